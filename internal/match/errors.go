package match

import (
	"errors"
	"fmt"
)

// ErrContract marks a correspondence that does not fit the graphs it is
// applied to. It signals a bug in the oracle or its caller.
var ErrContract = errors.New("correspondence contract violation")

type ContractViolation struct {
	Msg string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("%s: %s", ErrContract.Error(), e.Msg)
}

func (e *ContractViolation) Unwrap() error { return ErrContract }
