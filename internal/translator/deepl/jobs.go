package deepl

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/Ininit/OpenTranslate/internal/translator"
)

const (
	jobPriority = 1

	// beams requested per job: several alternatives for a lone sentence,
	// only the best one when sentences carry context
	beamsAlone       = 4
	beamsWithContext = 1
)

type job struct {
	Kind              string   `json:"kind"`
	RawSentence       string   `json:"raw_en_sentence"`
	ContextBefore     []string `json:"raw_en_context_before"`
	ContextAfter      []string `json:"raw_en_context_after"`
	PreferredNumBeams int      `json:"preferred_num_beams"`
}

type handleJobsParams struct {
	Jobs      []job      `json:"jobs"`
	Lang      langParams `json:"lang"`
	Priority  int        `json:"priority"`
	Timestamp int64      `json:"timestamp"`
}

type beam struct {
	PostprocessedSentence string  `json:"postprocessed_sentence"`
	Score                 float64 `json:"score"`
}

type translation struct {
	Beams []beam `json:"beams"`
}

// buildJobs turns split sentences into one job per sentence, each carrying
// every other sentence as context. No sentences yields a single empty job.
func buildJobs(sentences []string) []job {
	if len(sentences) == 0 {
		return []job{newJob("", nil, nil, beamsAlone)}
	}
	beams := beamsAlone
	if len(sentences) > 1 {
		beams = beamsWithContext
	}
	jobs := make([]job, 0, len(sentences))
	for i, s := range sentences {
		jobs = append(jobs, newJob(s, sentences[:i], sentences[i+1:], beams))
	}
	return jobs
}

func newJob(sentence string, before, after []string, beams int) job {
	return job{
		Kind:              "default",
		RawSentence:       sentence,
		ContextBefore:     cloneStrings(before),
		ContextAfter:      cloneStrings(after),
		PreferredNumBeams: beams,
	}
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func (t *Translator) handleJobs(ctx context.Context, id int64, s settings, jobs []job, from, to translator.Language) ([]string, error) {
	raw, err := t.call(ctx, t.translateHeader(), rpcRequest{
		JSONRPC: s.JSONRPC,
		ID:      id,
		Method:  methodHandleJobs,
		Params: handleJobsParams{
			Jobs: jobs,
			Lang: langParams{
				UserPreferredLangs: userPreferredLangs,
				SourceLangComputed: langs.backendOrSelf(from),
				TargetLang:         langs.backendOrSelf(to),
			},
			Priority:  jobPriority,
			Timestamp: t.now().UnixMilli(),
		},
	})
	if err != nil {
		return nil, err
	}

	trans := parseTranslations(raw)
	slog.Debug("deepl translate", "id", id, "jobs", len(jobs), "translations", len(trans))
	return reduceTranslations(trans), nil
}

func parseTranslations(raw json.RawMessage) []translation {
	m := fields(raw)
	transRaw, ok := m["translations"]
	if !ok {
		return nil
	}
	var trans []translation
	if err := json.Unmarshal(transRaw, &trans); err != nil {
		return nil
	}
	return trans
}

// reduceTranslations joins the top beam of every job when several jobs were
// sent. A single job instead exposes all of its beams as alternatives.
func reduceTranslations(trans []translation) []string {
	switch {
	case len(trans) > 1:
		var b strings.Builder
		for _, tr := range trans {
			if len(tr.Beams) > 0 {
				b.WriteString(tr.Beams[0].PostprocessedSentence)
			}
		}
		return []string{b.String()}
	case len(trans) == 1:
		out := make([]string, 0, len(trans[0].Beams))
		for _, bm := range trans[0].Beams {
			out = append(out, bm.PostprocessedSentence)
		}
		return out
	default:
		return []string{}
	}
}
