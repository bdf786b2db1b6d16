package llm

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/lead-intel/internal/model"
)

// RepairConclusions makes one lite-tier call to backfill conclusions that are
// empty or placeholders. Only requested paths that come back as non-empty
// strings are written; everything else in s is left untouched. Failures are
// logged and ignored. It returns the paths it filled.
func (o *Orchestrator) RepairConclusions(ctx context.Context, companyName string, s *model.Strategy) []string {
	missing := s.MissingConclusions()
	if len(missing) == 0 {
		return nil
	}
	log := zap.L().With(zap.String("company", companyName), zap.Strings("missing", missing))

	sections := make(map[string]any, len(missing))
	for _, path := range missing {
		name := strings.TrimSuffix(path, ".conclusion")
		if sec, _, ok := s.Section(name); ok {
			sections[name] = sec
		}
	}
	missingJSON, err := json.Marshal(missing)
	if err != nil {
		log.Warn("llm: encode missing paths", zap.Error(err))
		return nil
	}
	sectionsJSON, err := json.Marshal(sections)
	if err != nil {
		log.Warn("llm: encode sections", zap.Error(err))
		return nil
	}

	prompt, err := render("repair.tmpl", repairData{
		CompanyName:  companyName,
		MissingJSON:  string(missingJSON),
		SectionsJSON: string(sectionsJSON),
	})
	if err != nil {
		log.Warn("llm: render repair prompt", zap.Error(err))
		return nil
	}

	text, err := o.cascade(ctx, o.lite, Call{Phase: "repair", Prompt: prompt, JSON: true})
	if err != nil {
		log.Warn("llm: conclusion repair failed", zap.Error(err))
		return nil
	}

	var patch map[string]json.RawMessage
	if err := decodeReply(text, &patch); err != nil {
		log.Warn("llm: conclusion repair reply unusable", zap.Error(err))
		return nil
	}

	var filled []string
	for _, path := range missing {
		raw, ok := patch[path]
		if !ok {
			continue
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		_, conclusion, ok := s.Section(strings.TrimSuffix(path, ".conclusion"))
		if !ok {
			continue
		}
		*conclusion = model.Text(v)
		filled = append(filled, path)
	}

	log.Info("llm: conclusions repaired",
		zap.Strings("filled", filled),
		zap.Int("still_missing", len(missing)-len(filled)),
	)
	return filled
}
