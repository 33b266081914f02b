package session

import "github.com/danmuck/tagcard/internal/profile"

// Observer is the form layer's view of the manager. Calls may arrive from
// the goroutine resolving a read.
type Observer interface {
	OnStatus(message string)
	OnProfileLoaded(p profile.Record)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Status        func(message string)
	ProfileLoaded func(p profile.Record)
}

func (o ObserverFuncs) OnStatus(message string) {
	if o.Status != nil {
		o.Status(message)
	}
}

func (o ObserverFuncs) OnProfileLoaded(p profile.Record) {
	if o.ProfileLoaded != nil {
		o.ProfileLoaded(p)
	}
}

type noopObserver struct{}

func (noopObserver) OnStatus(string)                {}
func (noopObserver) OnProfileLoaded(profile.Record) {}
