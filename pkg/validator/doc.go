// Package validator builds declarative input checks.
//
// Each helper returns a Rule; Apply evaluates them all and aggregates the
// failures into ValidationErrors, which the handler package renders as a
// 422 response with per-field messages.
//
//	err := validator.Apply(
//		validator.Required("name", d.Name),
//		validator.ValidEmail("email", d.Email),
//		validator.OneOf("status", d.Status, statuses),
//	)
package validator
