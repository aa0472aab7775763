package deepl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"

	"github.com/Ininit/OpenTranslate/internal/translator"
)

const (
	methodSplit      = "LMT_split_into_sentences"
	methodHandleJobs = "LMT_handle_jobs"
)

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	ID      int64           `json:"id"`
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type langParams struct {
	LangUserSelected   string   `json:"lang_user_selected,omitempty"`
	UserPreferredLangs []string `json:"user_preferred_langs"`
	SourceLangComputed string   `json:"source_lang_computed,omitempty"`
	TargetLang         string   `json:"target_lang,omitempty"`
}

var userPreferredLangs = []string{"ZH", "EN"}

// newRequestID draws an id from [0, 1e8] in steps of 1e4. Ids are not
// checked for collisions; the backend only echoes them.
func newRequestID() int64 {
	return 10000 * rand.Int64N(10001)
}

// call posts one JSON-RPC envelope and returns its raw result. An error
// envelope becomes a *translator.ProtocolError; transport failures are
// returned wrapped.
func (t *Translator) call(ctx context.Context, header http.Header, req rpcRequest) (json.RawMessage, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", req.Method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("deepl %s request: %w", req.Method, err)
	}
	httpReq.Header = header

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("deepl %s: %w", req.Method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("deepl %s read: %w", req.Method, err)
	}

	var env rpcResponse
	if err := json.Unmarshal(data, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("deepl %s failed (status %d): %s", req.Method, resp.StatusCode, string(data))
		}
		return nil, fmt.Errorf("deepl %s decode: %w", req.Method, err)
	}
	if env.Error != nil {
		return nil, &translator.ProtocolError{
			Provider: providerName,
			Method:   req.Method,
			Code:     env.Error.Code,
			Message:  env.Error.Message,
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("deepl %s failed (status %d): %s", req.Method, resp.StatusCode, string(data))
	}
	return env.Result, nil
}

// fields decodes a result object into its top-level members so callers can
// tell an absent field from an empty one. Anything that is not an object
// yields nil.
func fields(raw json.RawMessage) map[string]json.RawMessage {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}
