package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/analytics"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/completion"
	apperrors "github.com/indraneel316/Financial-Decision-Helper-sub000/internal/errors"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/models"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/notify"
)

const recommendationInstructions = "You review planned purchases against a budget. Answer with a single " +
	`JSON object {"recommendation": "approve" | "delay" | "reconsider", "reasoning": string, ` +
	`"confidence": number between 0 and 1} and nothing else.`

type recommendationService struct {
	transactionService TransactionServicer
	cycleService       CycleServicer
	completer          completion.Completer
	notifier           notify.Publisher
}

// NewRecommendationService creates a new RecommendationServicer.
func NewRecommendationService(transactionService TransactionServicer, cycleService CycleServicer, completer completion.Completer, notifier notify.Publisher) RecommendationServicer {
	if completer == nil {
		completer = completion.Disabled{}
	}
	return &recommendationService{
		transactionService: transactionService,
		cycleService:       cycleService,
		completer:          completer,
		notifier:           notifier,
	}
}

// Recommend asks the completer for a verdict on one transaction and stores
// it on the transaction.
func (s *recommendationService) Recommend(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	txn, err := s.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}
	cycle, err := s.cycleService.GetCycleByID(userID, txn.CycleID)
	if err != nil {
		return nil, err
	}

	text, err := s.completer.Complete(ctx, completion.Request{
		System: recommendationInstructions,
		Prompt: recommendationPrompt(txn, cycle),
	})
	if err != nil {
		return nil, completionError(err, userID)
	}

	rec, err := parseRecommendation(text)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCompletionFailed, err)
	}

	txn, err = s.transactionService.SetRecommendation(txn.ID, rec)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.Publish(notify.TransactionTopic(txn.ID), notify.EventRecommendationNew, txn)
	}
	return txn, nil
}

func recommendationPrompt(txn *models.Transaction, cycle *models.BudgetCycle) string {
	var b strings.Builder
	remaining := cycle.TotalMoneyAllocation.Sub(cycle.SpentSoFar)
	allocated := cycle.Allocations.Data().Get(txn.Category)
	spent := cycle.CategorySpent.Data().Get(txn.Category)

	fmt.Fprintf(&b, "Planned purchase: %q in %s, %s %s.\n",
		txn.Description, txn.Category, txn.Amount.StringFixed(2), txn.Currency)
	fmt.Fprintf(&b, "Budget cycle %q (%s), amounts in %s.\n", cycle.Name, cycle.Duration, cycle.Currency)
	fmt.Fprintf(&b, "Allocated: %s, spent so far: %s, remaining: %s, savings target: %s.\n",
		cycle.TotalMoneyAllocation.StringFixed(2), cycle.SpentSoFar.StringFixed(2),
		remaining.StringFixed(2), cycle.SavingsTarget.StringFixed(2))
	fmt.Fprintf(&b, "%s allocation: %s, spent: %s.\n",
		txn.Category, analytics.Money(allocated), analytics.Money(spent))
	fmt.Fprintf(&b, "Cycle ends %s.\n", cycle.EndDate.Format("2006-01-02"))
	return b.String()
}

// parseRecommendation reads the completer's JSON answer, tolerating a
// surrounding markdown code fence.
func parseRecommendation(text string) (Recommendation, error) {
	var raw struct {
		Recommendation string  `json:"recommendation"`
		Reasoning      string  `json:"reasoning"`
		Confidence     float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &raw); err != nil {
		return Recommendation{}, fmt.Errorf("decode recommendation: %w", err)
	}

	label, ok := models.ParseRecommendation(raw.Recommendation)
	if !ok {
		return Recommendation{}, fmt.Errorf("unknown recommendation %q", raw.Recommendation)
	}
	confidence := raw.Confidence
	if math.IsNaN(confidence) || confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return Recommendation{
		Label:      label,
		Reasoning:  strings.TrimSpace(raw.Reasoning),
		Confidence: confidence,
	}, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
