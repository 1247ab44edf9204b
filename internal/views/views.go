// Package views renders the survey screens as templ components. Handlers
// compose them with Layout through templ.WithChildren.
//
//go:generate templ generate
package views

import "github.com/a-h/templ"

// fieldVals is the hx-vals payload naming the field a control posts.
func fieldVals(id string) (string, error) {
	return templ.JSONString(map[string]string{"name": id})
}
