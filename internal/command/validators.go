// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"time"

	"github.com/tfctl/tfdelta/internal/output"
	"github.com/tfctl/tfdelta/internal/snapshot"
	"github.com/tfctl/tfdelta/internal/state"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

func OutputValidator(value any) error {
	_, err := output.ParseFormat(fmt.Sprint(value))
	return err
}

func IdentityValidator(value any) error {
	_, err := state.ParseIdentity(fmt.Sprint(value))
	return err
}

func StreamFormatValidator(value any) error {
	_, err := snapshot.ParseFormat(fmt.Sprint(value))
	return err
}

// IntervalValidator rejects polling intervals below one second.
func IntervalValidator(value any) error {
	d, ok := value.(time.Duration)
	if !ok {
		return fmt.Errorf("not a duration: %v", value)
	}
	if d < time.Second {
		return fmt.Errorf("interval must be at least 1s, got %s", d)
	}
	return nil
}
