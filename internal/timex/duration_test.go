package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	var v struct {
		D Duration `json:"d"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"d":"30s"}`), &v))
	require.Equal(t, 30*time.Second, v.D.Duration)

	require.NoError(t, json.Unmarshal([]byte(`{"d":1000000000}`), &v))
	require.Equal(t, time.Second, v.D.Duration)

	require.Error(t, json.Unmarshal([]byte(`{"d":"bogus"}`), &v))
	require.Error(t, json.Unmarshal([]byte(`{"d":true}`), &v))
}
