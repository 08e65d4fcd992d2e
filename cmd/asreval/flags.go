// Copyright 2024 Daniel Erat.
// All rights reserved.

package main

import (
	"fmt"
	"strings"
)

// enumFlag accepts a single string from a list of allowed values.
type enumFlag struct {
	val     string   // specified value (also default)
	allowed []string // acceptable values
}

func (ef *enumFlag) String() string { return ef.val }
func (ef *enumFlag) Set(v string) error {
	for _, a := range ef.allowed {
		if v == a {
			ef.val = v
			return nil
		}
	}
	return fmt.Errorf("want %v", strings.Join(ef.allowed, ", "))
}
func (ef *enumFlag) allowedList() string { return strings.Join(ef.allowed, ", ") }
