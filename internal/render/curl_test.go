package render

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kolah/refdoc/internal/model"
)

func TestSampleValue(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"orderId", "order_id"},
		{"userID", "userid"},
		{"Id", "id_id"},
		{"pageSize", "20"},
		{"limit", "20"},
		{"pageToken", "next-token"},
		{"cursor", "next-token"},
		{"lang", "ja"},
		{"since", "2024-01-01T00:00:00Z"},
		{"Status", "status"},
		{"", "value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, SampleValue(tt.name))
		})
	}
}

func TestSubstitutePath(t *testing.T) {
	require.Equal(t, "/orders/order_id/items/lineitem_id", SubstitutePath("/orders/{orderId}/items/{lineItemId}"))
	require.Equal(t, "/health", SubstitutePath("/health"))
}

func TestCurl(t *testing.T) {
	tests := []struct {
		name string
		req  CurlRequest
		want string
	}{
		{
			name: "safe verb without auth",
			req:  CurlRequest{Method: model.MethodGet, Path: "/health"},
			want: `curl -X GET "$BASE_URL/health"`,
		},
		{
			name: "required query params only",
			req: CurlRequest{
				Method: model.MethodGet,
				Path:   "/orders/{orderId}",
				Parameters: []model.Parameter{
					{Name: "orderId", In: model.LocationPath, Required: true},
					{Name: "lang", In: model.LocationQuery, Required: true},
					{Name: "expand", In: model.LocationQuery},
					{Name: "X-Trace", In: model.LocationHeader, Required: true},
					{Name: "limit", In: model.LocationQuery, Required: true},
				},
				AuthHeader: DefaultAuthHeader,
			},
			want: "curl -X GET \"$BASE_URL/orders/order_id?lang=ja&limit=20\" \\\n" +
				"  -H \"Authorization: Bearer ${TOKEN}\"",
		},
		{
			name: "mutating verb with body",
			req: CurlRequest{
				Method:     model.MethodPost,
				Path:       "/webhooks/psp",
				Body:       "{\n  \"event\": \"string\"\n}",
				AuthHeader: "X-Signature: ${SIGNATURE}",
			},
			want: "curl -X POST \"$BASE_URL/webhooks/psp\" \\\n" +
				"  -H \"X-Signature: ${SIGNATURE}\" \\\n" +
				"  -H \"Idempotency-Key: $(uuidgen)\" \\\n" +
				"  -H \"Content-Type: application/json\" \\\n" +
				"  -d @- <<'JSON'\n" +
				"{\n  \"event\": \"string\"\n}\n" +
				"JSON",
		},
		{
			name: "delete without body",
			req:  CurlRequest{Method: model.MethodDelete, Path: "/session"},
			want: "curl -X DELETE \"$BASE_URL/session\" \\\n" +
				"  -H \"Idempotency-Key: $(uuidgen)\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Curl(tt.req))
		})
	}
}
