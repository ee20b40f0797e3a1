package main

import (
	"context"
	"fmt"
	"os"

	"readiness-workers/internal/models"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type questionFile struct {
	Questions []models.Question `yaml:"questions"`
}

type questionWriter interface {
	UpsertQuestion(ctx context.Context, q models.Question) (string, error)
}

type investorLister interface {
	ListActiveInvestors(ctx context.Context) ([]models.Investor, error)
}

type investorIndexer interface {
	IndexInvestor(ctx context.Context, inv models.Investor) error
}

// loadQuestions reads a question bank and validates every entry. Order
// indexes left at zero follow file position.
func loadQuestions(path string) ([]models.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read question bank %s", path)
	}

	var file questionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrapf(err, "decode question bank %s", path)
	}
	if len(file.Questions) == 0 {
		return nil, eris.Errorf("question bank %s has no questions", path)
	}

	ids := make(map[string]bool, len(file.Questions))
	for i := range file.Questions {
		q := &file.Questions[i]
		if q.OrderIndex == 0 {
			q.OrderIndex = i + 1
		}
		if err := q.Validate(); err != nil {
			return nil, eris.Wrapf(err, "question %d (%s)", i+1, q.ID)
		}
		if q.ID == "" {
			continue
		}
		if ids[q.ID] {
			return nil, eris.Errorf("duplicate question id %s", q.ID)
		}
		ids[q.ID] = true
	}
	return file.Questions, nil
}

func seedQuestions(ctx context.Context, w questionWriter, questions []models.Question, log *zap.Logger) (int, error) {
	for _, q := range questions {
		id, err := w.UpsertQuestion(ctx, q)
		if err != nil {
			return 0, err
		}
		log.Debug("question upserted",
			zap.String("questionId", id),
			zap.String("dimension", string(q.Dimension)),
			zap.Bool("core", q.Core))
	}
	return len(questions), nil
}

// indexInvestors copies the active investor directory into the search
// index. It keeps going past individual failures and reports how many
// documents were written.
func indexInvestors(ctx context.Context, src investorLister, dst investorIndexer, log *zap.Logger) (int, error) {
	investors, err := src.ListActiveInvestors(ctx)
	if err != nil {
		return 0, err
	}

	indexed, failed := 0, 0
	for _, inv := range investors {
		if err := dst.IndexInvestor(ctx, inv); err != nil {
			failed++
			log.Warn("failed to index investor", zap.String("investorId", inv.ID), zap.Error(err))
			continue
		}
		indexed++
	}
	if failed > 0 {
		return indexed, fmt.Errorf("%d of %d investors failed to index", failed, len(investors))
	}
	return indexed, nil
}
