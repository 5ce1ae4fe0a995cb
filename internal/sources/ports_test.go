package sources

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturas/internal/core"
)

func TestDecodeBatch(t *testing.T) {
	body := `{"records":[
		{"id":"1","status":"Pagada","date":"01/01/2024","amount":50},
		{"id":"2","status":"Anulada","date":"","amount":"120.50"}
	]}`

	got, err := DecodeBatch(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, core.StatusPaid, got[0].Status)
	assert.Equal(t, "01/01/2024", got[0].Date)
	assert.True(t, got[0].Amount.Equal(decimal.NewFromInt(50)))
	assert.True(t, got[1].Amount.Equal(decimal.RequireFromString("120.5")))
	assert.Equal(t, "", got[1].Date)
}

func TestDecodeBatch_EmptyRecords(t *testing.T) {
	got, err := DecodeBatch(strings.NewReader(`{"records":[]}`))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDecodeBatch_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"missing records key", `{"items":[]}`},
		{"null records", `{"records":null}`},
		{"unknown status", `{"records":[{"id":"1","status":"Perdida","date":"","amount":1}]}`},
		{"negative amount", `{"records":[{"id":"1","status":"Pagada","date":"","amount":-1}]}`},
		{"empty id", `{"records":[{"id":"","status":"Pagada","date":"","amount":1}]}`},
		{"amount not numeric", `{"records":[{"id":"1","status":"Pagada","date":"","amount":"lots"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBatch(strings.NewReader(tt.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedPayload), "got %v", err)
		})
	}
}

func TestEncodeBatch_DecodesBack(t *testing.T) {
	in := []core.Record{
		{ID: "7", Status: core.StatusPaymentPlan, Date: "31/12/2023", Amount: decimal.RequireFromString("19.99")},
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeBatch(&buf, in))

	out, err := DecodeBatch(&buf)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, in[0].ID, out[0].ID)
	assert.True(t, in[0].Amount.Equal(out[0].Amount))
}

func TestEncodeBatch_NilWritesEmptyList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeBatch(&buf, nil))
	assert.JSONEq(t, `{"records":[]}`, buf.String())
}

func TestDecodeDetails(t *testing.T) {
	got, err := DecodeDetails(strings.NewReader(`{"details":[{"cau":"ES0021000000000001JN0FA000","request_status":"No hemos recibido ninguna solicitud de autoconsumo","self_consumption_type":"Con excedentes y compensación Individual - Consumo","compensation":"Precio PVPC","power":"5kWp"}]}`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "5kWp", got[0].Power)

	_, err = DecodeDetails(strings.NewReader(`{"details":[{"cau":""}]}`))
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = DecodeDetails(strings.NewReader(`{}`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestSelector(t *testing.T) {
	assert.Equal(t, SelectorSimulated, SelectorFor(true))
	assert.Equal(t, SelectorLive, SelectorFor(false))
	assert.Equal(t, "live", SelectorLive.String())
	assert.Equal(t, "simulated", SelectorSimulated.String())
}
