// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package streamdiff_test

import (
	"context"
	"fmt"

	"github.com/tfctl/tfdelta/streamdiff"
)

func ExampleNew() {
	src := streamdiff.FromSlices(
		[]string{"Chocolate"},
		[]string{"Chocolate", "Bonbon"},
		[]string{"Chocolate", "Bonbon", "Cookie"},
		[]string{"Cake", "Bonbon", "Cookie"},
	)

	d := streamdiff.New(src)
	for a, err := range d.All(context.Background()) {
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		fmt.Println(a)
	}

	// Output:
	// Add(Chocolate)
	// Add(Bonbon)
	// Add(Cookie)
	// Remove(Chocolate)
	// Add(Cake)
}
