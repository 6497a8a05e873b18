// Package statemachine describes lifecycles as immutable transition tables.
//
// A Table maps (state, event) pairs to target states, optionally gated by
// guards. Records keep their own state; the table only answers where an event
// leads, so one table is shared safely across goroutines.
//
//	var orders = statemachine.MustNew(
//		statemachine.WithTransition("pay", "paid", []string{"new"}),
//		statemachine.WithTransition("ship", "shipped", []string{"paid"}),
//	)
//
//	next, err := orders.Fire(ctx, order.State, "ship")
package statemachine
