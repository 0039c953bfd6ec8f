package controllers

import "github.com/meinhoongagan/findam/services"

var errCannotParse = services.ErrValidation("Cannot parse JSON")

// outcome is the metrics label for a service result.
func outcome(err error) string {
	if se, ok := services.AsError(err); ok {
		return se.Code
	}
	return services.CodeInternal
}
