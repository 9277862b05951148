// Package operations runs a report as an ordered list of steps.
//
// A Manager executes the steps registered in a Registry one after another,
// passing data between them through the OperationState context. Each step
// gets its own trace span, duration metric and start/finish log lines. The
// first failing step stops the operation and every later step is marked
// skipped.
//
// The report steps are:
//
//	parse     read the sales CSV into sale records
//	aggregate fold the records into one summary per product
//	format    render the summaries as sorted report rows
//	export    render the artifacts and commit them atomically
package operations
