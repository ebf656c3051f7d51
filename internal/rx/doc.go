// Package rx implements the minimal push protocol that every stream in the
// repository is built on.
//
// The package provides:
//   - Observer: the Next/Error/Complete callback contract
//   - Subscription: idempotent teardown container
//   - Subscriber: an Observer bound to a Subscription, with a closed flag
//     that producers check between emitted values
//   - Observable: anything that can be subscribed to; New builds one from a
//     producer function
//   - Subject and ReplaySubject: hot multicast sources
//   - Operator: the explicit stream-transformer interface, applied with Pipe
//
// FAILURE SEMANTICS:
//
// A panic raised by a consumer callback or by a producer never escapes the
// producer's call stack. It is recovered, wrapped in a *PanicError, delivered
// as an Error notification to the affected subscriber only, and that
// subscriber is torn down.
//
// RE-ENTRANCY:
//
// Unsubscribe may be called from inside Next/Error/Complete, including
// while the producer is still inside its Subscribe call. Producers that emit
// in a loop must check Subscriber.Closed() before each value:
//
//	rx.New(func(s *rx.Subscriber) rx.Teardown {
//	    for i := 0; !s.Closed(); i++ {
//	        s.Next(i)
//	    }
//	    return nil
//	})
//
// To unsubscribe during a synchronous Subscribe call, pass a *Subscriber built
// with NewSubscriber; Subscribe uses it directly instead of wrapping it.
package rx
