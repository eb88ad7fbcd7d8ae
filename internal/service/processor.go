package service

import (
	"context"
	"fmt"
	"log"

	"garagebook/internal/domain"
	"garagebook/internal/port"
	"garagebook/internal/rules"
)

// Processor orchestrates invoice understanding: it attempts the AI
// enhancement path first and falls back to the deterministic rule engine on
// any non-success outcome. It never returns an error for AI-side failures;
// the only unsuccessful result it can produce is a FallbackError, when the
// rule dictionaries themselves are unreachable.
//
// The flow is a small state machine: AttemptAI -> {MergeWithRaw | Fallback}
// -> Done, with a single exit producing one ProcessingResult.
type Processor struct {
	enhancer port.InvoiceEnhancer
	engine   *rules.Engine
	ruleRepo port.RuleRepository
}

// NewProcessor creates an invoice processor.
func NewProcessor(enhancer port.InvoiceEnhancer, engine *rules.Engine, ruleRepo port.RuleRepository) *Processor {
	return &Processor{
		enhancer: enhancer,
		engine:   engine,
		ruleRepo: ruleRepo,
	}
}

// ProcessInvoice turns a raw extraction into one uniform ProcessingResult,
// annotated with the method that produced it and the decisions taken along
// the way. Merging is deterministic and idempotent: the same AI output and
// raw extraction always yield the same merged result.
func (p *Processor) ProcessInvoice(ctx context.Context, raw *domain.RawExtraction) *domain.ProcessingResult {
	ai := p.enhancer.Enhance(ctx, raw)
	if ai.Success {
		return p.mergeWithRaw(ctx, ai.Invoice, raw)
	}

	log.Printf("service.Processor: AI enhancement failed (%s): %s", ai.Failure, ai.ErrorMessage)

	var reason string
	if ai.RateLimitEncountered {
		reason = "Rate limit encountered, used fallback"
	} else {
		reason = fmt.Sprintf("AI processing failed: %s", ai.ErrorMessage)
	}
	return p.fallback(ctx, raw, reason)
}

// mergeWithRaw fills header fields the AI omitted from the raw extraction.
// The AI's line item array is authoritative when present; line items are
// never re-derived across methods. When the AI returned zero line items but
// the raw extraction has some, classification alone is delegated to the rule
// engine and the substitution is noted.
func (p *Processor) mergeWithRaw(ctx context.Context, ai *port.ParsedInvoice, raw *domain.RawExtraction) *domain.ProcessingResult {
	result := &domain.ProcessingResult{
		Success:       true,
		Method:        domain.MethodAIEnhanced,
		VehicleID:     ai.VehicleID,
		InvoiceNumber: ai.InvoiceNumber,
		InvoiceDate:   ai.InvoiceDate,
		TotalCost:     ai.TotalCost,
		PartsCost:     ai.PartsCost,
		LaborCost:     ai.LaborCost,
		Description:   ai.Description,
		Confidence:    ai.Confidence,
		Notes:         domain.NoteList(append([]string(nil), ai.Notes...)),
	}

	if odo, ok := rules.NormalizeInteger(ai.Odometer); ok {
		result.Odometer = odo
	}

	fill := func(field string, dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = rules.CleanHeaderValue(src)
			result.AddNote(fmt.Sprintf("field %s filled from raw extraction", field))
		}
	}
	fill("vehicle_id", &result.VehicleID, raw.VehicleID)
	fill("invoice_number", &result.InvoiceNumber, raw.InvoiceNumber)
	fill("invoice_date", &result.InvoiceDate, raw.InvoiceDate)

	if result.Odometer == 0 {
		if odo, ok := rules.NormalizeInteger(raw.Odometer); ok {
			result.Odometer = odo
			result.AddNote("field odometer filled from raw extraction")
		}
	}

	fillCost := func(field string, dst *float64, src float64) {
		if *dst == 0 && src != 0 {
			*dst = src
			result.AddNote(fmt.Sprintf("field %s filled from raw extraction", field))
		}
	}
	fillCost("total_cost", &result.TotalCost, raw.TotalCost)
	fillCost("parts_cost", &result.PartsCost, raw.PartsCost)
	fillCost("labor_cost", &result.LaborCost, raw.LaborCost)

	switch {
	case len(ai.LineItems) > 0:
		result.LineItems = convertAILines(ai.LineItems, result)
	case len(raw.LineItems) > 0:
		// Classification only: AI header values stay authoritative.
		snap, err := p.loadSnapshot(ctx)
		if err != nil {
			result.AddNote(fmt.Sprintf("AI returned no line items and rule dictionaries unavailable: %v", err))
			break
		}
		fb := p.engine.ClassifyAndNormalize(raw, snap)
		result.LineItems = fb.LineItems
		if result.Description == "" {
			result.Description = fb.Description
		}
		result.AddNote(fmt.Sprintf("AI returned no line items; %d line items classified by rule engine", len(fb.LineItems)))
	}

	if result.Confidence == 0 && len(result.LineItems) > 0 {
		sum := 0
		for _, li := range result.LineItems {
			sum += li.Confidence
		}
		result.Confidence = sum / len(result.LineItems)
	}

	return result
}

// fallback runs the rule engine over the full raw extraction, prepending the
// AI failure reason so the audit trail explains the method switch.
func (p *Processor) fallback(ctx context.Context, raw *domain.RawExtraction, reason string) *domain.ProcessingResult {
	snap, err := p.loadSnapshot(ctx)
	if err != nil {
		// Both paths unavailable; the only case where failure reaches the caller.
		return &domain.ProcessingResult{
			Success:        false,
			Method:         domain.MethodRuleFallback,
			Failure:        domain.FailureFallbackError,
			FailureMessage: fmt.Sprintf("loading rule dictionaries: %v", err),
			Notes:          domain.NoteList{reason, fmt.Sprintf("fallback engine unavailable: %v", err)},
		}
	}

	result := p.engine.ClassifyAndNormalize(raw, snap)
	result.Notes = append(domain.NoteList{reason}, result.Notes...)
	return result
}

func (p *Processor) loadSnapshot(ctx context.Context) (*domain.RuleSnapshot, error) {
	keywords, err := p.ruleRepo.ListKeywordRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("keyword rules: %w", err)
	}
	mappings, err := p.ruleRepo.ListFieldMappingRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("field mapping rules: %w", err)
	}
	return &domain.RuleSnapshot{KeywordRules: keywords, FieldMappingRules: mappings}, nil
}

// convertAILines maps AI line items onto the domain type. Classifications
// outside the closed set canonicalize to Other with a note; a classification
// is never left empty.
func convertAILines(lines []port.ParsedLine, result *domain.ProcessingResult) []domain.ProcessedLineItem {
	out := make([]domain.ProcessedLineItem, 0, len(lines))
	for _, li := range lines {
		class, known := domain.CanonicalClassification(li.Classification)
		if !known && li.Classification != "" {
			result.AddNote(fmt.Sprintf("line %d: unknown classification %q mapped to Other", li.LineNumber, li.Classification))
		}
		out = append(out, domain.ProcessedLineItem{
			LineNumber:       li.LineNumber,
			Description:      li.Description,
			UnitCost:         li.UnitCost,
			Quantity:         li.Quantity,
			TotalCost:        li.TotalCost,
			Classification:   class,
			Confidence:       li.Confidence,
			PartNumber:       li.PartNumber,
			ExtractionMethod: domain.ExtractAIInferred,
		})
	}
	return out
}
