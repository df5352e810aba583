// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package locate

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/imagecrypt/internal/similarity"
	"github.com/pdiddy/imagecrypt/pkg/types"
)

// --- test helpers ---

func touch(t *testing.T, root string, rel ...string) []string {
	t.Helper()
	paths := make([]string, 0, len(rel))
	for _, r := range rel {
		p := filepath.Join(root, filepath.FromSlash(r))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("img"), 0o644))
		paths = append(paths, p)
	}
	return paths
}

func testCfg(roots ...string) types.LocateConfig {
	return types.LocateConfig{Roots: roots}
}

func stemOf(path string) string {
	name := strings.ToLower(filepath.Base(path))
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// --- scenarios ---

func TestLocateRanksBySimilarity(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "vacation2020.png", "vacationphoto.jpg", "beach.png")

	got, err := Locate(context.Background(), "vacation", testCfg(root))
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "vacation2020.png"),
		filepath.Join(root, "vacationphoto.jpg"),
	}, got)
}

func TestLocateNoMatchIsEmptyNotError(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "beach.png", "sunset.jpg", "family/dinner.bmp")

	got, err := Locate(context.Background(), "xyz123", testCfg(root))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLocateTruncatesToCap(t *testing.T) {
	root := t.TempDir()
	var names []string
	suffix := ""
	for i := 0; i < 7; i++ {
		names = append(names, "vacation"+suffix+".png")
		suffix += fmt.Sprint(i + 1)
	}
	paths := touch(t, root, names...)

	got, err := Locate(context.Background(), "vacation", testCfg(root))
	require.NoError(t, err)

	require.Len(t, got, types.DefaultMaxResults)
	assert.Equal(t, paths[:6], got)
	assert.NotContains(t, got, paths[6])
}

func TestLocateExtensionFilter(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"Holiday.JPG", "holiday.Jpeg", "holiday1.svg", "holiday2.BMP",
		"holiday.gif", "holiday.txt", "holiday", ".png",
	)

	out, err := Search(context.Background(), "holiday", types.LocateConfig{Roots: []string{root}, MaxResults: 20})
	require.NoError(t, err)

	got := lo.Map(out.Paths(), func(p string, _ int) string { return filepath.Base(p) })
	assert.ElementsMatch(t, []string{"Holiday.JPG", "holiday.Jpeg", "holiday1.svg", "holiday2.BMP"}, got)
}

func TestLocateCooperativeCutoff(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"vacation1.png", "vacation12.png", "vacation123.png",
		"vacation1234.png", "vacation12345.png", "vacation123456.png",
	)
	deep := touch(t, root, "deeper/vacation.png")[0]

	t.Run("cap reached after root listing", func(t *testing.T) {
		out, err := Search(context.Background(), "vacation", testCfg(root))
		require.NoError(t, err)
		assert.Len(t, out.Matches, 6)
		assert.NotContains(t, out.Paths(), deep)
		assert.True(t, out.Stats.Cutoff)
		assert.Equal(t, 1, out.Stats.Dirs)
	})

	t.Run("cap not reached descends", func(t *testing.T) {
		cfg := testCfg(root)
		cfg.MaxResults = 7
		out, err := Search(context.Background(), "vacation", cfg)
		require.NoError(t, err)
		require.Len(t, out.Matches, 7)
		assert.Equal(t, deep, out.Matches[0].Path)
		assert.Equal(t, 1.0, out.Matches[0].Score)
	})
}

func TestLocateListingAlwaysCompletes(t *testing.T) {
	root := t.TempDir()
	var names []string
	for i := 0; i < 12; i++ {
		names = append(names, fmt.Sprintf("report%02d.png", i))
	}
	touch(t, root, names...)

	cfg := testCfg(root)
	cfg.MaxResults = 3
	out, err := Search(context.Background(), "report", cfg)
	require.NoError(t, err)

	// The root listing admits all twelve before the cap is checked again.
	assert.Equal(t, 12, out.Stats.Admitted)
	assert.Len(t, out.Matches, 3)
}

func TestLocateBreadthFirst(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"a/b/c/sunset.png",
		"z/sunset1.png",
	)

	cfg := testCfg(root)
	cfg.MaxResults = 1
	out, err := Search(context.Background(), "sunset", cfg)
	require.NoError(t, err)

	// z is listed before a/b/c is reached.
	require.Len(t, out.Matches, 1)
	assert.Equal(t, filepath.Join(root, "z", "sunset1.png"), out.Matches[0].Path)
}

func TestLocateMissingRootContributesNothing(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "passport.png")

	roots := []string{filepath.Join(root, "does-not-exist"), root}
	got, err := Locate(context.Background(), "passport", testCfg(roots...))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "passport.png")}, got)
}

func TestLocateUnreadableDirectorySkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	root := t.TempDir()
	touch(t, root, "locked/receipt.png", "receipt1.png")
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	out, err := Search(context.Background(), "receipt", testCfg(root))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "receipt1.png")}, out.Paths())
	assert.Equal(t, 1, out.Stats.Skipped)
}

func TestLocateSymlinks(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()
	target := touch(t, other, "mountain.png", "nested/mountain1.png")

	if err := os.Symlink(target[0], filepath.Join(root, "mountain.png")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(other, "nested"), filepath.Join(root, "linked")))
	require.NoError(t, os.Symlink(filepath.Join(other, "gone.png"), filepath.Join(root, "mountain2.png")))

	out, err := Search(context.Background(), "mountain", testCfg(root))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "mountain.png")}, out.Paths())
}

func TestLocateCancelledContext(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "vacation.png")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := Locate(ctx, "vacation", testCfg(root))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, got)
}

func TestLocateCustomThreshold(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "vacation2020.png", "vacationphoto.jpg")

	cfg := testCfg(root)
	cfg.Threshold = 0.79
	got, err := Locate(context.Background(), "vacation", cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "vacation2020.png")}, got)
}

// --- properties ---

var words = []string{"vacation", "beach", "img", "photo", "scan", "passport", "report", "family", "cat"}
var exts = []string{".png", ".JPG", ".jpeg", ".svg", ".bmp", ".gif", ".txt", ".pdf"}

// randomTree builds n files spread over a few nested directories.
func randomTree(t *testing.T, rng *rand.Rand, root string, n int) {
	t.Helper()
	dirs := []string{"", "a", "a/b", "c", "c/d/e"}
	for i := 0; i < n; i++ {
		name := words[rng.Intn(len(words))]
		if rng.Intn(2) == 0 {
			name += fmt.Sprint(rng.Intn(1000))
		}
		if rng.Intn(3) == 0 {
			name += "_" + words[rng.Intn(len(words))]
		}
		rel := filepath.ToSlash(filepath.Join(dirs[rng.Intn(len(dirs))], fmt.Sprintf("%s-%d%s", name, i, exts[rng.Intn(len(exts))])))
		touch(t, root, rel)
	}
}

func TestLocateProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	roots := []string{t.TempDir(), t.TempDir(), t.TempDir()}
	for _, r := range roots {
		randomTree(t, rng, r, 60)
	}
	admissible := []string{".jpg", ".jpeg", ".png", ".svg", ".bmp"}

	for _, query := range []string{"vacation", "photo", "cat", "passport-3", "zzzz"} {
		for _, limit := range []int{1, 3, 6, 40} {
			t.Run(fmt.Sprintf("%s/cap=%d", query, limit), func(t *testing.T) {
				cfg := testCfg(roots...)
				cfg.MaxResults = limit
				out, err := Search(context.Background(), query, cfg)
				require.NoError(t, err)

				assert.LessOrEqual(t, len(out.Matches), limit)
				for i, m := range out.Matches {
					ext := strings.ToLower(filepath.Ext(m.Path))
					assert.Contains(t, admissible, ext)
					score := similarity.Ratio(stemOf(m.Path), query)
					assert.Greater(t, score, types.DefaultThreshold)
					assert.Equal(t, score, m.Score)
					if i > 0 {
						assert.LessOrEqual(t, m.Score, out.Matches[i-1].Score)
					}
				}
			})
		}
	}
}

func TestLocateSequentialMatchesConcurrent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	roots := []string{t.TempDir(), t.TempDir(), t.TempDir(), t.TempDir()}
	for _, r := range roots {
		randomTree(t, rng, r, 40)
	}

	// A cap above the number of admissible matches keeps the cutoff out of play.
	cfg := testCfg(roots...)
	cfg.MaxResults = 1000

	concurrent, err := Search(context.Background(), "photo", cfg)
	require.NoError(t, err)

	cfg.Sequential = true
	sequential, err := Search(context.Background(), "photo", cfg)
	require.NoError(t, err)

	require.NotEmpty(t, concurrent.Matches)
	assert.ElementsMatch(t, sequential.Matches, concurrent.Matches)
	assert.Equal(t,
		lo.Map(sequential.Matches, func(m Match, _ int) float64 { return m.Score }),
		lo.Map(concurrent.Matches, func(m Match, _ int) float64 { return m.Score }),
	)
}

func TestLocateRepeatable(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	roots := []string{t.TempDir(), t.TempDir()}
	for _, r := range roots {
		randomTree(t, rng, r, 50)
	}

	first, err := Locate(context.Background(), "family", testCfg(roots...))
	require.NoError(t, err)
	second, err := Locate(context.Background(), "family", testCfg(roots...))
	require.NoError(t, err)

	if len(first) < types.DefaultMaxResults {
		assert.ElementsMatch(t, first, second)
	} else {
		assert.Len(t, second, len(first))
	}
}

// --- query and roots ---

func TestNormalizeQuery(t *testing.T) {
	extsIn := normalizeExtensions(types.DefaultExtensions)
	tests := []struct {
		in, want string
	}{
		{"Vacation", "vacation"},
		{"  Beach.PNG ", "beach"},
		{"report.final", "report.final"},
		{"archive.tar.jpeg", "archive.tar"},
		{".png", ".png"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeQuery(tt.in, extsIn))
		})
	}
}

func TestNormalizeExtensions(t *testing.T) {
	assert.Equal(t, []string{".png", ".jpg", ".webp"}, normalizeExtensions([]string{"PNG", ".JPG", " webp "}))
}

func TestResolveRoots(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	assert.Equal(t, DefaultRoots(), resolveRoots(nil))
	assert.Len(t, DefaultRoots(), 5)
	assert.Equal(t, filepath.Join(home, "Desktop"), DefaultRoots()[0])

	got := resolveRoots([]string{"~/Pictures", "~", "/tmp/x"})
	assert.Equal(t, []string{filepath.Join(home, "Pictures"), home, filepath.Clean("/tmp/x")}, got)

	rel := resolveRoots([]string{"photos"})
	assert.True(t, filepath.IsAbs(rel[0]))
}
