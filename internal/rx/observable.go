package rx

// Observable is a push-based source of notifications.
type Observable interface {
	// Subscribe starts delivery to o and returns the handle that stops it.
	// If o is a *Subscriber it is used directly.
	Subscribe(o Observer) *Subscription
}

// Producer emits into s and returns the teardown to run when s closes.
type Producer func(s *Subscriber) Teardown

type funcObservable struct {
	produce Producer
}

// New builds a cold Observable from a producer. The producer runs once per
// subscription; a panic inside it becomes an Error for that subscriber.
func New(produce Producer) Observable {
	return &funcObservable{produce: produce}
}

func (o *funcObservable) Subscribe(obs Observer) *Subscription {
	s := toSubscriber(obs)
	if s.Closed() {
		return s.Subscription
	}
	func() {
		defer func() {
			if r := recover(); r != nil {
				s.Error(recovered(r))
			}
		}()
		s.Add(o.produce(s))
	}()
	return s.Subscription
}

// Of emits each value synchronously, then completes.
func Of(values ...any) Observable {
	return New(func(s *Subscriber) Teardown {
		for _, v := range values {
			if s.Closed() {
				return nil
			}
			s.Next(v)
		}
		s.Complete()
		return nil
	})
}

// Empty completes immediately.
func Empty() Observable {
	return New(func(s *Subscriber) Teardown {
		s.Complete()
		return nil
	})
}

// Never emits nothing and never terminates.
func Never() Observable {
	return New(func(*Subscriber) Teardown { return nil })
}

// Throw errors immediately.
func Throw(err error) Observable {
	return New(func(s *Subscriber) Teardown {
		s.Error(err)
		return nil
	})
}

// Generate emits start, start+1, ... synchronously until the subscriber
// closes. It never completes on its own.
func Generate(start int) Observable {
	return New(func(s *Subscriber) Teardown {
		for i := start; !s.Closed(); i++ {
			s.Next(i)
		}
		return nil
	})
}
