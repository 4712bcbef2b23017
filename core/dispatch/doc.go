// Package dispatch runs storage operations as independent background tasks.
//
// Each call to Dispatcher.Go starts one goroutine and returns a *Task handle whose
// completion can be observed (Done, Err, Wait). Tasks are not ordered relative to
// each other and are not cancelled by their caller's context. A panic inside a
// task is recovered and reported as an error matching ErrPanic.
//
// # Usage
//
//	d := dispatch.New(logger)
//	save := d.Go(ctx, "save_node", func(ctx context.Context) error {
//	    return client.SaveNode(ctx, bucket, node)
//	})
//	err := dispatch.WaitAll(ctx, save)
package dispatch
