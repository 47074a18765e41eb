package services

import (
	"time"

	"github.com/custodia-labs/provenance-cli/internal/core/domain"
)

// settingTable lists every settable key in display order.
func settingTable() []setting {
	table := []setting{
		{
			key:  "backends.order",
			kind: kindList,
			get:  func(s *domain.Settings) any { return s.Backends.Order },
			set:  func(s *domain.Settings, v any) { s.Backends.Order = v.([]string) },
		},
	}

	table = append(table,
		remoteString(domain.BackendPlagiarismCheck, "token", EnvPlagiarismCheckToken, true,
			func(r *domain.RemoteSettings) *string { return &r.APIKey }),
		remoteString(domain.BackendCopyleaks, "email", EnvCopyleaksEmail, false,
			func(r *domain.RemoteSettings) *string { return &r.Account }),
		remoteString(domain.BackendCopyleaks, "key", EnvCopyleaksKey, true,
			func(r *domain.RemoteSettings) *string { return &r.APIKey }),
		remoteString(domain.BackendGPTZero, "key", EnvGPTZeroKey, true,
			func(r *domain.RemoteSettings) *string { return &r.APIKey }),
	)
	for _, name := range []string{domain.BackendPlagiarismCheck, domain.BackendCopyleaks, domain.BackendGPTZero} {
		table = append(table,
			remoteString(name, "base_url", "", false,
				func(r *domain.RemoteSettings) *string { return &r.BaseURL }),
			remoteEnabled(name),
		)
	}

	table = append(table,
		floatSetting("similarity.document_threshold", func(s *domain.Settings) *float64 { return &s.Similarity.DocumentThreshold }),
		floatSetting("similarity.sentence_threshold", func(s *domain.Settings) *float64 { return &s.Similarity.SentenceThreshold }),
		floatSetting("similarity.very_high", func(s *domain.Settings) *float64 { return &s.Similarity.VeryHigh }),
		floatSetting("similarity.agreement_bonus", func(s *domain.Settings) *float64 { return &s.Similarity.AgreementBonus }),
		intSetting("similarity.max_matches", func(s *domain.Settings) *int { return &s.Similarity.MaxMatches }),
		intSetting("similarity.vocabulary_size", func(s *domain.Settings) *int { return &s.Similarity.VocabularySize }),
		intSetting("similarity.ngram_min", func(s *domain.Settings) *int { return &s.Similarity.NGramMin }),
		intSetting("similarity.ngram_max", func(s *domain.Settings) *int { return &s.Similarity.NGramMax }),
		intSetting("similarity.min_sentence_chars", func(s *domain.Settings) *int { return &s.Similarity.MinSentenceChars }),
		intSetting("similarity.max_edit_cells", func(s *domain.Settings) *int { return &s.Similarity.MaxEditCells }),

		floatSetting("heuristic.weight_perplexity", func(s *domain.Settings) *float64 { return &s.Heuristic.WeightPerplexity }),
		floatSetting("heuristic.weight_burstiness", func(s *domain.Settings) *float64 { return &s.Heuristic.WeightBurstiness }),
		floatSetting("heuristic.weight_structural", func(s *domain.Settings) *float64 { return &s.Heuristic.WeightStructural }),
		floatSetting("heuristic.authorship_damping", func(s *domain.Settings) *float64 { return &s.Heuristic.AuthorshipDamping }),
		intSetting("heuristic.min_words", func(s *domain.Settings) *int { return &s.Heuristic.MinWords }),

		secondsSetting("timeouts.request", func(s *domain.Settings) *time.Duration { return &s.Timeouts.Request }),
		secondsSetting("timeouts.backend", func(s *domain.Settings) *time.Duration { return &s.Timeouts.Backend }),
		intSetting("timeouts.truncate_chars", func(s *domain.Settings) *int { return &s.Timeouts.TruncateChars }),

		setting{
			key:  "corpus.path",
			kind: kindString,
			get:  func(s *domain.Settings) any { return s.Corpus.Path },
			set:  func(s *domain.Settings, v any) { s.Corpus.Path = v.(string) },
		},
		intSetting("input.min_chars", func(s *domain.Settings) *int { return &s.Input.MinChars }),
	)
	return table
}

func floatSetting(key string, field func(*domain.Settings) *float64) setting {
	return setting{
		key:  key,
		kind: kindFloat,
		get:  func(s *domain.Settings) any { return *field(s) },
		set:  func(s *domain.Settings, v any) { *field(s) = v.(float64) },
	}
}

func intSetting(key string, field func(*domain.Settings) *int) setting {
	return setting{
		key:  key,
		kind: kindInt,
		get:  func(s *domain.Settings) any { return *field(s) },
		set:  func(s *domain.Settings, v any) { *field(s) = v.(int) },
	}
}

func secondsSetting(key string, field func(*domain.Settings) *time.Duration) setting {
	return setting{
		key:  key,
		kind: kindSeconds,
		get:  func(s *domain.Settings) any { return *field(s) },
		set:  func(s *domain.Settings, v any) { *field(s) = v.(time.Duration) },
	}
}

// remoteString binds backends.<name>.<field> to a string of the backend's
// RemoteSettings.
func remoteString(name, field, env string, secret bool, ptr func(*domain.RemoteSettings) *string) setting {
	return setting{
		key:    "backends." + name + "." + field,
		kind:   kindString,
		secret: secret,
		env:    env,
		get: func(s *domain.Settings) any {
			r := s.Backends.Remote[name]
			return *ptr(&r)
		},
		set: func(s *domain.Settings, v any) {
			r := s.Backends.Remote[name]
			*ptr(&r) = v.(string)
			s.Backends.Remote[name] = r
		},
	}
}

func remoteEnabled(name string) setting {
	return setting{
		key:  "backends." + name + ".enabled",
		kind: kindBool,
		get:  func(s *domain.Settings) any { return s.Backends.Remote[name].Enabled },
		set: func(s *domain.Settings, v any) {
			r := s.Backends.Remote[name]
			r.Enabled = v.(bool)
			s.Backends.Remote[name] = r
		},
	}
}
