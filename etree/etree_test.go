package etree_test

import (
	"context"
	"testing"

	"github.com/fwojciec/webtools"
	"github.com/fwojciec/webtools/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func boolPtr(b bool) *bool { return &b }

func TestToJSON(t *testing.T) {
	t.Parallel()

	t.Run("maps attributes, repeated elements and empty elements", func(t *testing.T) {
		t.Parallel()

		resp, err := etree.ToJSON(context.Background(), etree.ToJSONRequest{
			XML:    `<?xml version="1.0"?><catalog id="7"><book>A</book><book>B</book><price>9.5</price><note/></catalog>`,
			Indent: intPtr(0),
		})

		require.NoError(t, err)
		assert.Equal(t, `{"catalog":{"@id":7,"book":["A","B"],"note":null,"price":9.5}}`, resp.JSON)
		assert.Equal(t, "catalog", resp.Root)
		assert.Equal(t, 5, resp.Elements)
	})

	t.Run("mixed text goes under the text key", func(t *testing.T) {
		t.Parallel()

		resp, err := etree.ToJSON(context.Background(), etree.ToJSONRequest{
			XML:    `<p lang="en">hello <b>world</b></p>`,
			Indent: intPtr(0),
		})

		require.NoError(t, err)
		assert.Equal(t, `{"p":{"#text":"hello","@lang":"en","b":"world"}}`, resp.JSON)
	})

	t.Run("type inference can be disabled", func(t *testing.T) {
		t.Parallel()

		resp, err := etree.ToJSON(context.Background(), etree.ToJSONRequest{
			XML:             `<a n="1"><flag>true</flag></a>`,
			Indent:          intPtr(0),
			InferTypes:      boolPtr(false),
			AttributePrefix: new(string),
		})

		require.NoError(t, err)
		assert.Equal(t, `{"a":{"flag":"true","n":"1"}}`, resp.JSON)
	})

	t.Run("keeps cdata and namespaces", func(t *testing.T) {
		t.Parallel()

		resp, err := etree.ToJSON(context.Background(), etree.ToJSONRequest{
			XML:    `<x:a xmlns:x="urn:x"><x:b><![CDATA[<raw>]]></x:b></x:a>`,
			Indent: intPtr(0),
		})

		require.NoError(t, err)
		assert.Equal(t, `{"x:a":{"@xmlns:x":"urn:x","x:b":"<raw>"}}`, resp.JSON)
	})

	t.Run("malformed xml reports the line", func(t *testing.T) {
		t.Parallel()

		resp, err := etree.ToJSON(context.Background(), etree.ToJSONRequest{XML: "<a>\n<b></c>\n</a>"})

		require.NoError(t, err)
		assert.False(t, resp.Valid)
		assert.Empty(t, resp.JSON)
		require.Len(t, resp.Errors, 1)
		assert.Equal(t, 2, resp.Errors[0].Line)
		assert.Equal(t, webtools.SeverityError, resp.Errors[0].Severity)
		assert.Contains(t, resp.Errors[0].Message, "closed by")
	})

	t.Run("valid xml has no errors", func(t *testing.T) {
		t.Parallel()

		resp, err := etree.ToJSON(context.Background(), etree.ToJSONRequest{XML: "<a/>"})

		require.NoError(t, err)
		assert.True(t, resp.Valid)
		assert.Empty(t, resp.Errors)
	})

	t.Run("requires input", func(t *testing.T) {
		t.Parallel()

		_, err := etree.ToJSON(context.Background(), etree.ToJSONRequest{XML: "  "})

		assert.Equal(t, webtools.EINVALID, webtools.ErrorCode(err))
	})
}

func TestFromJSON(t *testing.T) {
	t.Parallel()

	t.Run("single key object becomes the root", func(t *testing.T) {
		t.Parallel()

		resp, err := etree.FromJSON(context.Background(), etree.FromJSONRequest{
			JSON:        `{"catalog":{"@id":7,"book":["A","B"],"#text":"x","note":null}}`,
			Indent:      intPtr(0),
			Declaration: boolPtr(false),
		})

		require.NoError(t, err)
		assert.Equal(t, `<catalog id="7">x<book>A</book><book>B</book><note/></catalog>`, resp.XML)
	})

	t.Run("arrays are wrapped in the root tag", func(t *testing.T) {
		t.Parallel()

		resp, err := etree.FromJSON(context.Background(), etree.FromJSONRequest{
			JSON:        `[1, true, "a&b"]`,
			RootTag:     "list",
			Indent:      intPtr(0),
			Declaration: boolPtr(false),
		})

		require.NoError(t, err)
		assert.Equal(t, `<list><item>1</item><item>true</item><item>a&amp;b</item></list>`, resp.XML)
	})

	t.Run("adds a declaration and indents by default", func(t *testing.T) {
		t.Parallel()

		resp, err := etree.FromJSON(context.Background(), etree.FromJSONRequest{JSON: `{"a":{"b":1}}`})

		require.NoError(t, err)
		assert.Equal(t, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<a>\n  <b>1</b>\n</a>", resp.XML)
	})

	t.Run("round trips through xml-to-json", func(t *testing.T) {
		t.Parallel()

		const src = `{"order":{"@id":42,"item":[{"@sku":"A1","qty":2},{"@sku":"B2","qty":1}],"paid":true}}`
		x, err := etree.FromJSON(context.Background(), etree.FromJSONRequest{JSON: src})
		require.NoError(t, err)

		j, err := etree.ToJSON(context.Background(), etree.ToJSONRequest{XML: x.XML, Indent: intPtr(0)})
		require.NoError(t, err)
		assert.JSONEq(t, src, j.JSON)
	})

	t.Run("rejects invalid names", func(t *testing.T) {
		t.Parallel()

		_, err := etree.FromJSON(context.Background(), etree.FromJSONRequest{JSON: `{"a":{"bad name":1}}`})

		assert.Equal(t, webtools.EINVALID, webtools.ErrorCode(err))
	})

	t.Run("rejects invalid json", func(t *testing.T) {
		t.Parallel()

		_, err := etree.FromJSON(context.Background(), etree.FromJSONRequest{JSON: `{"a":`})

		assert.Equal(t, webtools.EINVALID, webtools.ErrorCode(err))
	})
}
