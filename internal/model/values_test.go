package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"2027-03-01", false},
		{"2024-02-29", false},
		{"2023-02-29", true},
		{"2027-3-01", true},
		{"2027-03-1", true},
		{"27-03-01", true},
		{"2027/03/01", true},
		{"2027-03-01T00:00:00Z", true},
		{"", true},
		{"tomorrow", true},
	}

	for _, tt := range tests {
		_, err := ParseDate(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestDateJSONAndScan(t *testing.T) {
	d := NewDate(2027, time.March, 1)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2027-03-01"`, string(b))

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2027-03-01", v)

	var scanned Date
	require.NoError(t, scanned.Scan("2027-03-01"))
	assert.Equal(t, d, scanned)

	require.NoError(t, scanned.Scan(time.Date(2028, time.July, 4, 13, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2028-07-04", scanned.String())

	assert.Error(t, scanned.Scan(42))
}

func TestRecipientsRoundTrip(t *testing.T) {
	r := Recipients{"a@b.com", "ops@example.org"}

	v, err := r.Value()
	require.NoError(t, err)
	assert.Equal(t, `["a@b.com","ops@example.org"]`, v)

	var got Recipients
	require.NoError(t, got.Scan(v))
	assert.Equal(t, r, got)

	require.NoError(t, got.Scan([]byte("null")))
	assert.NotNil(t, got)
	assert.Empty(t, got)

	assert.Error(t, got.Scan("not json"))
}

func TestResultStatusValid(t *testing.T) {
	for _, s := range []ResultStatus{StatusPresent, StatusMissing, StatusNotEnough, StatusBatteryLow} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, ResultStatus("lost").Valid())
	assert.False(t, ResultStatus("").Valid())
}

func TestOptional(t *testing.T) {
	var absent Optional[string]
	assert.False(t, absent.Set)
	assert.False(t, absent.Present())

	assert.True(t, Some("x").Present())

	null := Null[string]()
	assert.True(t, null.Set)
	assert.False(t, null.Present())
}

func TestBagPublicOmitsToken(t *testing.T) {
	bag := &Bag{ID: 3, SiteID: 1, Name: "Kit", QRToken: "secret-token", Active: true}

	b, err := json.Marshal(bag.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret-token")
	assert.NotContains(t, string(b), "qr_token")
	assert.JSONEq(t, `{"id":3,"site_id":1,"name":"Kit","active":true}`, string(b))
}
