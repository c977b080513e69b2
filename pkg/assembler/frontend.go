package assembler

import (
	"context"
	"errors"

	"octopusstream/internal/models"
)

// ErrCanceled is returned by a Frontend when the user backs out of an import
var ErrCanceled = errors.New("import canceled")

// Request is the set of parameters a frontend collects for one import
type Request struct {
	Locator models.StreamLocator
	Options Options
}

// Frontend is the user-facing side of an import: it gathers parameters and
// displays the result. The assembler never sees concrete UI types.
type Frontend interface {
	// CollectStreamParameters asks the user which stream to open and how
	CollectStreamParameters(ctx context.Context) (Request, error)

	// PresentResult hands the assembled stream to the user
	PresentResult(ctx context.Context, stream *models.AssembledStream) error
}

// Run drives a single import session through fe. Cancellation by the user
// is not an error. Assembly errors are returned unmodified.
func (a *Assembler) Run(ctx context.Context, fe Frontend) error {
	req, err := fe.CollectStreamParameters(ctx)
	if err != nil {
		if errors.Is(err, ErrCanceled) {
			a.logger.Info("import canceled")
			return nil
		}
		return err
	}

	stream, err := a.Assemble(ctx, req.Locator, req.Options)
	if err != nil {
		return err
	}

	return fe.PresentResult(ctx, stream)
}
