package codec

import (
	"fmt"

	"github.com/wisentfmt/wisent/errs"
)

func errEmpty() error {
	return errs.ErrEmptyInput
}

func errCorrupt(format_ string, args ...any) error {
	return fmt.Errorf("%w: "+format_, append([]any{errs.ErrCorrupt}, args...)...)
}

func errTruncated(format_ string, args ...any) error {
	return fmt.Errorf("%w: "+format_, append([]any{errs.ErrTruncated}, args...)...)
}
