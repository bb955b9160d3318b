package ops

import (
	"context"
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/hpungsan/yada/internal/db"
	"github.com/hpungsan/yada/internal/errors"
	"github.com/hpungsan/yada/internal/food"
	"github.com/hpungsan/yada/internal/source"
)

// ImportFileInput contains parameters for the ImportFile operation.
type ImportFileInput struct {
	Path string // required; a file name directly in the exports directory
}

// ImportOutput contains the result of an import.
type ImportOutput struct {
	Source       string             `json:"source"`
	Added        []string           `json:"added"`
	Failed       []ImportError      `json:"failed"`
	InvalidLines []source.LineError `json:"invalid_lines,omitempty"`
}

// ImportError is a definition that could not be added.
type ImportError struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportFoods adds every valid definition from src to the catalog. Foods
// may reference each other in any order. Failed definitions are reported
// and do not stop the others; the added foods are stored in one
// transaction.
func (s *Session) ImportFoods(ctx context.Context, src source.Source) (*ImportOutput, error) {
	out := &ImportOutput{Source: src.Name(), Added: []string{}, Failed: []ImportError{}}

	defs, err := src.Fetch(ctx)
	if err != nil {
		var perr *source.ParseError
		var yerr *errors.YadaError
		switch {
		case stderrors.As(err, &perr):
			out.InvalidLines = perr.Lines
		case stderrors.As(err, &yerr):
			return nil, err
		default:
			return nil, errors.NewInternal(err)
		}
	}

	next := s.catalog.Clone()
	res := next.AddBatch(defs)

	added := make([]food.Food, 0, len(res.Added))
	for _, id := range res.Added {
		f, ok := next.Get(id)
		if !ok {
			return nil, errors.NewInternalConsistency("imported food " + id + " missing from catalog")
		}
		added = append(added, f)
	}
	if err := db.InsertFoods(s.db, added); err != nil {
		return nil, err
	}
	s.catalog = next

	out.Added = append(out.Added, res.Added...)
	for _, f := range res.Failed {
		out.Failed = append(out.Failed, ImportError{
			ID:      f.ID,
			Code:    string(errors.CodeOf(f.Err)),
			Message: f.Err.Error(),
		})
	}

	s.logger.Info("foods imported",
		zap.String("source", out.Source),
		zap.Int("added", len(out.Added)),
		zap.Int("failed", len(out.Failed)),
		zap.Int("invalid_lines", len(out.InvalidLines)))
	return out, nil
}

// ImportFile imports a JSONL food file from the exports directory.
func (s *Session) ImportFile(ctx context.Context, input ImportFileInput) (*ImportOutput, error) {
	path := ResolveExportPath(input.Path, s.exportsDir)
	if err := ValidatePath(path, PathCheckRead, s.exportsDir); err != nil {
		return nil, err
	}
	return s.ImportFoods(ctx, source.JSONL{Path: path})
}
