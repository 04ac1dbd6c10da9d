// Package validate holds the domain predicates applied to parsed model
// output: the target script check and the required field check.
package validate
