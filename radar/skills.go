// CLAUDE:SUMMARY Skills catalog: curated + previous + search-inferred records, name dedup, per-record validation, inclusive count band.
package radar

import (
	"context"
	"fmt"
	"strings"

	"github.com/hazyhaar/radar/radar/internal/merge"
	"github.com/hazyhaar/radar/radar/internal/model"
	"github.com/hazyhaar/radar/radar/internal/search"
)

type skillsCatalog struct {
	svc *Service
	cfg SkillsConfig
}

func (k *skillsCatalog) Name() string { return "skills" }

// Update validates the merged skill set and writes it only when its size
// lies inside the policy band.
func (k *skillsCatalog) Update(ctx context.Context) (int, error) {
	var prev []model.Skill
	if _, err := k.svc.store.Load(k.cfg.File, &prev); err != nil {
		return 0, fmt.Errorf("skills: %w", err)
	}
	next := k.build(ctx, prev)
	if err := k.cfg.Policy.Band(len(next)); err != nil {
		return 0, fmt.Errorf("skills: %w", err)
	}
	if err := k.svc.store.Save(k.cfg.File, next); err != nil {
		return 0, fmt.Errorf("skills: %w", err)
	}
	return len(next), nil
}

// build merges curated and previous records by name, keeps the valid ones
// and tops them up with inferred records while room remains under the band
// maximum. Curated and previous records are never truncated: too many of
// them fail the band check in Update.
func (k *skillsCatalog) build(ctx context.Context, prev []model.Skill) []model.Skill {
	log := k.svc.logger.With("catalog", k.Name())

	known := merge.Merge(merge.Options[model.Skill]{Key: skillKey}, k.cfg.Curated, prev)
	valid, rejected := k.cfg.Policy.Filter(known)

	room := k.cfg.Policy.MaxRecords - len(valid)
	if room > 0 {
		inferred, rej := k.cfg.Policy.Filter(k.infer(ctx, known))
		rejected = append(rejected, rej...)
		valid = append(valid, inferred[:min(room, len(inferred))]...)
	}
	for _, rj := range rejected {
		log.Info("skills: record rejected", "name", rj.Name, "reason", rj.Reason)
	}
	return valid
}

// infer derives new skills from repositories matching the keyword rules.
// Names already in known are skipped; at most MaxInferred are returned.
func (k *skillsCatalog) infer(ctx context.Context, known []model.Skill) []model.Skill {
	if k.cfg.Query == "" || len(k.cfg.Rules) == 0 {
		return nil
	}
	repos, err := k.svc.github.WithPerPage(k.cfg.PerPage).Search(ctx, k.cfg.Query)
	if err != nil {
		k.svc.logger.Warn("skills: search failed", "catalog", k.Name(), "error", err)
		return nil
	}

	seen := make(map[string]bool, len(known))
	for _, s := range known {
		seen[skillKey(s)] = true
	}
	var out []model.Skill
	for _, repo := range repos {
		rule, ok := matchRule(k.cfg.Rules, repo)
		if !ok || seen[merge.NameKey(rule.Name)] {
			continue
		}
		seen[merge.NameKey(rule.Name)] = true
		out = append(out, model.Skill{
			Name:              rule.Name,
			Category:          k.cfg.InferCategory,
			WhatItDoes:        fmt.Sprintf("Emergent capability inferred from active open-source signal: %s.", repo.Name),
			PracticalUseCase:  rule.PracticalUseCase,
			SourceName:        repo.Name,
			SourceURL:         repo.URL,
			VerificationLevel: model.LevelCommunityVerified,
		})
		if len(out) >= k.cfg.MaxInferred {
			break
		}
	}
	return out
}

// matchRule returns the first rule whose token appears in the repository
// name or description.
func matchRule(rules []InferenceRule, repo search.Candidate) (InferenceRule, bool) {
	text := strings.ToLower(repo.Name + " " + repo.Description)
	for _, r := range rules {
		if r.Token != "" && strings.Contains(text, strings.ToLower(r.Token)) {
			return r, true
		}
	}
	return InferenceRule{}, false
}

func skillKey(s model.Skill) string { return merge.NameKey(s.Name) }
