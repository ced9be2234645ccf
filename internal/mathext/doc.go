// Package mathext provides the scalar special functions, power utilities and
// the Mersenne Twister stream used by the psl operation catalogue.
//
// Functions follow the argument order of their GSL counterparts and report
// domain errors the way Go's math package does: by returning NaN or ±Inf.
// Nothing here panics on numeric input.
package mathext
