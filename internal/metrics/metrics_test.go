package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveLLM(t *testing.T) {
	okBefore := testutil.ToFloat64(LLMRequests.WithLabelValues(PurposeDetect, "ok"))
	errBefore := testutil.ToFloat64(LLMRequests.WithLabelValues(PurposeDetect, "error"))

	ObserveLLM(PurposeDetect, time.Now(), nil)
	ObserveLLM(PurposeDetect, time.Now(), errors.New("timeout"))
	ObserveLLM(PurposeDetect, time.Now(), nil)

	assert.Equal(t, okBefore+2, testutil.ToFloat64(LLMRequests.WithLabelValues(PurposeDetect, "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(LLMRequests.WithLabelValues(PurposeDetect, "error")))
}
