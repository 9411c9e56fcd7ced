// Package logging builds the zap logger shared by the binaries.
package logging

import "go.uber.org/zap"

// New returns a development logger when development is set, a production
// logger otherwise.
func New(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
