package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/pratik-mahalle/wardroberec/internal/pkg/errors"
	"github.com/pratik-mahalle/wardroberec/internal/testutil"
	"github.com/pratik-mahalle/wardroberec/pkg/client"
)

// setupCLI isolates the config directory and environment for one test
func setupCLI(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("LOG_LEVEL", "disabled")
	t.Setenv("SENTRY_DSN", "")
	t.Setenv("WARDROBE_SERVER", "")
	t.Setenv("WARDROBE_USER_ID", "")
	t.Setenv("NO_COLOR", "1")
	return home
}

func runCLI(t *testing.T, backend *testutil.FakeBackend, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	cmd := newRootCmd()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(""))
	if backend != nil {
		args = append([]string{"--server", backend.URL()}, args...)
	}
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestOptionsCommand(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, nil, "options", "material")
	require.NoError(t, err)
	assert.Contains(t, out, "Denim")
	assert.NotContains(t, out, "Party Wear")

	_, err = runCLI(t, nil, "options", "shoes")
	assert.Error(t, err)
}

func TestConfigSetAndGet(t *testing.T) {
	home := setupCLI(t)

	_, err := runCLI(t, nil, "config", "set", "user_id", "user-9")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(home, ".wardrobe", "config.yaml"))

	out, err := runCLI(t, nil, "config", "get", "user_id")
	require.NoError(t, err)
	assert.Contains(t, out, "user_id: user-9")

	_, err = runCLI(t, nil, "config", "set", "colour", "red")
	assert.Error(t, err)
}

func TestUploadCommand(t *testing.T) {
	setupCLI(t)
	backend := testutil.NewFakeBackend(t)
	image := testutil.WriteJPEG(t, "shirt.jpg")

	out, err := runCLI(t, backend, "upload", image,
		"--category", "top", "--color", "BLUE", "--material", "cotton", "--occasion", "business  casual")
	require.NoError(t, err)
	assert.Contains(t, out, "uploaded")

	uploads := backend.Uploads()
	require.Len(t, uploads, 1)
	assert.Equal(t, "Top", uploads[0].Fields["category"])
	assert.Equal(t, "Blue", uploads[0].Fields["color"])
	assert.Equal(t, "Business Casual", uploads[0].Fields["occasion"])
	assert.FileExists(t, image, "the source image is copied, never moved")
}

func TestUploadCommandRequiresMetadata(t *testing.T) {
	setupCLI(t)
	backend := testutil.NewFakeBackend(t)
	image := testutil.WriteJPEG(t, "shirt.jpg")

	_, err := runCLI(t, backend, "upload", image, "--category", "top", "--color", "blue", "--occasion", "casual")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.Code(err))
	assert.Zero(t, backend.Calls(testutil.RouteUpload))
}

func TestUploadCommandRejectsUnknownOption(t *testing.T) {
	setupCLI(t)
	backend := testutil.NewFakeBackend(t)
	image := testutil.WriteJPEG(t, "shirt.jpg")

	_, err := runCLI(t, backend, "upload", image,
		"--category", "cape", "--color", "blue", "--material", "silk", "--occasion", "casual")
	require.Error(t, err)
	assert.Zero(t, backend.Calls(testutil.RouteUpload))
}

func TestUploadCommandFailure(t *testing.T) {
	setupCLI(t)
	backend := testutil.NewFakeBackend(t)
	backend.Fail(testutil.RouteUpload, 500, "disk full")
	image := testutil.WriteJPEG(t, "shirt.jpg")

	out, err := runCLI(t, backend, "upload", image,
		"--category", "top", "--color", "blue", "--material", "cotton", "--occasion", "casual")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeServerRejected, apperrors.Code(err))
	assert.Contains(t, out, "failed")
	assert.Equal(t, 1, backend.Calls(testutil.RouteUpload), "no retry without a terminal")
}

func wardrobeItems() []client.ClothingItem {
	return []client.ClothingItem{
		{Category: "Top", Color: "Blue", Material: "Cotton", Occasion: "Casual"},
		{Category: "Bottom", Color: "Black", Material: "Denim", Occasion: "Casual"},
		{Category: "Dress", Color: "Red", Material: "Silk", Occasion: "Formal"},
	}
}

func TestListCommand(t *testing.T) {
	setupCLI(t)
	backend := testutil.NewFakeBackend(t)
	backend.AddClothing(wardrobeItems()...)

	out, err := runCLI(t, backend, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "3 item(s)")
	assert.Contains(t, out, "Denim")

	out, err = runCLI(t, backend, "-o", "json", "list", "--occasion", "Formal")
	require.NoError(t, err)
	var items []client.ClothingItem
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Dress", items[0].Category)
	assert.Equal(t, []string{"Formal"}, backend.LastQuery()["occasion"])
}

func TestListCommandEmpty(t *testing.T) {
	setupCLI(t)
	backend := testutil.NewFakeBackend(t)

	out, err := runCLI(t, backend, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Your wardrobe is empty")

	out, err = runCLI(t, backend, "-o", "json", "list")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestDeleteCommand(t *testing.T) {
	setupCLI(t)
	backend := testutil.NewFakeBackend(t)
	added := backend.AddClothing(wardrobeItems()...)
	id := added[0].ID

	out, err := runCLI(t, backend, "delete", strconv.Itoa(id))
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")
	assert.Contains(t, out, "2 item(s)")
	assert.Len(t, backend.Clothing(), 2)
	assert.Equal(t, 1, backend.Calls(testutil.RouteList))

	_, err = runCLI(t, backend, "delete", "999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")

	_, err = runCLI(t, backend, "delete", "abc")
	assert.Error(t, err)
}

func outfit() client.RecommendationResponse {
	return client.RecommendationResponse{
		OutfitID: "outfit-42",
		Weather:  "sunny",
		Occasion: "Casual",
		Items: map[client.Slot]*client.OutfitItem{
			client.SlotTop:      {ID: 3, Color: "Blue", Material: "Cotton"},
			client.SlotFootwear: {ID: 9, Color: "White", Material: "Leather"},
		},
	}
}

func TestRecommendCommand(t *testing.T) {
	setupCLI(t)
	backend := testutil.NewFakeBackend(t)
	backend.SetRecommendation(outfit())

	out, err := runCLI(t, backend, "recommend", "--occasion", "casual", "--color", "blue", "--keywords", "boho, chic")
	require.NoError(t, err)
	assert.Contains(t, out, "Outfit outfit-42 for Casual (sunny)")
	assert.Less(t, strings.Index(out, "top"), strings.Index(out, "footwear"))

	reqs := backend.RecommendationRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, client.RecommendationRequest{
		Occasion: "Casual",
		Color:    "Blue",
		Keywords: []string{"boho", "chic"},
	}, reqs[0])
	assert.Empty(t, backend.Ratings(), "rating is opt-in")
}

func TestRecommendCommandValidation(t *testing.T) {
	setupCLI(t)
	backend := testutil.NewFakeBackend(t)

	_, err := runCLI(t, backend, "recommend", "--color", "blue")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.Code(err))

	_, err = runCLI(t, backend, "recommend", "--occasion", "casual", "--keywords", "a, b, c, d")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.Code(err))

	assert.Zero(t, backend.Calls(testutil.RouteRecommend))
}

func TestRecommendCommandNoItems(t *testing.T) {
	setupCLI(t)
	backend := testutil.NewFakeBackend(t)
	backend.SetRecommendationJSON(`{"outfit_id":"o-1","weather":"rain","occasion":"Formal","items":{"top":null,"bottom":null}}`)

	out, err := runCLI(t, backend, "recommend", "--occasion", "formal")
	require.NoError(t, err)
	assert.Contains(t, out, "No matching items")
}

func TestRecommendCommandFailure(t *testing.T) {
	setupCLI(t)
	backend := testutil.NewFakeBackend(t)
	backend.Fail(testutil.RouteRecommend, 503, "busy")

	_, err := runCLI(t, backend, "recommend", "--occasion", "casual")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeServerRejected, apperrors.Code(err))
}

func TestRecommendCommandWithRating(t *testing.T) {
	setupCLI(t)
	t.Setenv("WARDROBE_USER_ID", "user-7")
	backend := testutil.NewFakeBackend(t)
	backend.SetRecommendation(outfit())

	out, err := runCLI(t, backend, "recommend", "--occasion", "casual", "--rate", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "rated")
	assert.Contains(t, out, "****.")

	ratings := backend.Ratings()
	require.Len(t, ratings, 1)
	assert.Equal(t, client.RatingRequest{
		OutfitID: "outfit-42",
		Rating:   4,
		Items:    map[client.Slot]int{client.SlotTop: 3, client.SlotFootwear: 9},
		UserID:   "user-7",
	}, ratings[0])
}

func TestRecommendCommandQuery(t *testing.T) {
	setupCLI(t)
	backend := testutil.NewFakeBackend(t)
	backend.SetRecommendation(outfit())

	_, err := runCLI(t, backend, "recommend", "--query", "--occasion", "casual", "--keywords", "boho,chic")
	require.NoError(t, err)
	assert.Equal(t, 1, backend.Calls(testutil.RouteRecommendQuery))
	assert.Zero(t, backend.Calls(testutil.RouteRecommend))
	assert.Equal(t, []string{"boho", "chic"}, backend.LastQuery()["keywords"])
}

func TestFormatStars(t *testing.T) {
	assert.Equal(t, "***..", formatStars(3))
	assert.Equal(t, "*....", formatStars(-2))
	assert.Equal(t, "*****", formatStars(9))
}

func TestTableRender(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "ID", "NAME")
	tbl.AddRow("1", "shirt")
	tbl.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "--"))
	assert.Contains(t, lines[2], "shirt")
}

func TestConfirmWithoutTerminal(t *testing.T) {
	assert.False(t, confirm(strings.NewReader("y\n"), os.Stderr, "Retry?"))
}
