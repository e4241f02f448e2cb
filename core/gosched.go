package core

import "runtime"

// gosched yields the processor while spinning on hardware completion
// flags. On TinyGo this lets the scheduler service other goroutines
// between polls.
func gosched() {
	runtime.Gosched()
}
