package app

import (
	"context"
	"errors"

	"KeywordWatcher/internal/ports"
)

// fanoutNotifier delivers every message to all configured channels and joins
// their failures, so one broken channel never silences the others.
type fanoutNotifier []ports.Notifier

var _ ports.Notifier = (fanoutNotifier)(nil)

func (f fanoutNotifier) Notify(ctx context.Context, message string) error {
	var errs []error
	for _, channel := range f {
		if err := channel.Notify(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanoutNotifier) NotifyError(ctx context.Context, message string) error {
	var errs []error
	for _, channel := range f {
		if err := channel.NotifyError(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
