package openai

import "errors"

// ErrEmptyResponse indicates the model returned no choices.
var ErrEmptyResponse = errors.New("model returned empty response")
