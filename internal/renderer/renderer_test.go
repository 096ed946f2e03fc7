package renderer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunthewhat/easy-cert-batch/internal/layout"
	"github.com/sunthewhat/easy-cert-batch/internal/qrcode"
	"github.com/sunthewhat/easy-cert-batch/internal/roster"
)

func encodeImage(t *testing.T, w, h int, format imaging.Format) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(w, h, color.White), format))
	return buf.Bytes()
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	engine, err := layout.NewEngine()
	require.NoError(t, err)
	return NewRenderer(engine, nil)
}

func participant(row int, name string) *roster.Participant {
	return &roster.Participant{
		Row:    row,
		Name:   name,
		Course: "Python 101",
		Date:   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestLoadTemplate(t *testing.T) {
	testCases := []struct {
		name    string
		data    []byte
		wantErr bool
		wantExt string
	}{
		{"PNG 3:2", encodeImage(t, 300, 200, imaging.PNG), false, ".png"},
		{"JPEG 3:2", encodeImage(t, 600, 400, imaging.JPEG), false, ".jpg"},
		{"Within tolerance", encodeImage(t, 303, 200, imaging.PNG), false, ".png"},
		{"Square", encodeImage(t, 200, 200, imaging.PNG), true, ""},
		{"Portrait", encodeImage(t, 200, 300, imaging.PNG), true, ""},
		{"Not an image", []byte("name,course,date\n"), true, ""},
		{"Empty", nil, true, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tpl, err := LoadTemplate(tc.data)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrTemplate)
				assert.Nil(t, tpl)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantExt, tpl.Ext())
		})
	}
}

func TestRender_ProducesPair(t *testing.T) {
	r := newTestRenderer(t)
	tpl, err := LoadTemplate(encodeImage(t, 600, 400, imaging.PNG))
	require.NoError(t, err)

	artifact, err := r.Render(tpl, participant(1, "Ana Putri"), qrcode.Payload("easycert", "run-1", 1, "Ana Putri"))
	require.NoError(t, err)

	assert.Equal(t, 1, artifact.Row)
	assert.Equal(t, "001_ana_putri", artifact.Stem)
	assert.True(t, bytes.HasPrefix(artifact.PDF, []byte("%PDF")))

	img, err := png.Decode(bytes.NewReader(artifact.PNG))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(600, 400), img.Bounds().Size())

	// QR modules are the only dark pixels in the bottom-right corner.
	rect := qrcode.Placement(tpl.Size())
	dark := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r == 0 {
				dark++
			}
		}
	}
	assert.Greater(t, dark, 0)
}

func TestRender_DoesNotMutateTemplate(t *testing.T) {
	r := newTestRenderer(t)
	tpl, err := LoadTemplate(encodeImage(t, 300, 200, imaging.PNG))
	require.NoError(t, err)
	before := bytes.Clone(tpl.img.Pix)

	_, err = r.Render(tpl, participant(1, "Ana"), "easycert:run:1:Ana")
	require.NoError(t, err)

	assert.Equal(t, before, tpl.img.Pix)
}

func TestRender_SameInputSameImage(t *testing.T) {
	r := newTestRenderer(t)
	tpl, err := LoadTemplate(encodeImage(t, 300, 200, imaging.PNG))
	require.NoError(t, err)

	first, err := r.Render(tpl, participant(2, "Budi"), "easycert:run:2:Budi")
	require.NoError(t, err)
	second, err := r.Render(tpl, participant(2, "Budi"), "easycert:run:2:Budi")
	require.NoError(t, err)

	assert.Equal(t, first.PNG, second.PNG)
}

func TestRender_MissingTemplateIsShared(t *testing.T) {
	r := newTestRenderer(t)

	for _, tpl := range []*Template{nil, {}} {
		_, err := r.Render(tpl, participant(3, "Citra"), "payload")

		var renderErr *RenderError
		require.ErrorAs(t, err, &renderErr)
		assert.True(t, renderErr.Shared)
		assert.ErrorIs(t, err, ErrTemplate)
	}
}

func TestRender_PayloadTooLargeIsRowScoped(t *testing.T) {
	r := newTestRenderer(t)
	tpl, err := LoadTemplate(encodeImage(t, 300, 200, imaging.PNG))
	require.NoError(t, err)

	_, err = r.Render(tpl, participant(4, "Dewi"), strings.Repeat("x", qrcode.MaxPayloadLength+1))

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.False(t, renderErr.Shared)
	assert.Equal(t, 4, renderErr.Row)
	assert.ErrorIs(t, err, qrcode.ErrPayloadTooLarge)
}

func TestStem(t *testing.T) {
	testCases := []struct {
		seq  int
		name string
		want string
	}{
		{1, "Ana Putri", "001_ana_putri"},
		{12, "José Ñúñez", "012_jose_nunez"},
		{7, "  O'Brien,   Mary-Jane ", "007_o_brien_mary_jane"},
		{3, "王小明", "003_participant"},
		{1000, "Ana", "1000_ana"},
	}

	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, Stem(tc.seq, tc.name))
		})
	}

	assert.NotEqual(t, Stem(1, "Ana"), Stem(2, "Ana"))
}

func TestPreview_ScalesDown(t *testing.T) {
	r := newTestRenderer(t)
	tpl, err := LoadTemplate(encodeImage(t, 600, 400, imaging.PNG))
	require.NoError(t, err)

	data, err := r.Preview(tpl, participant(1, "Ana"), "easycert:preview:1:Ana", 300)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(300, 200), img.Bounds().Size())
}
