package assetpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEmptyUsesOwnerName(t *testing.T) {
	got, err := ResolveLocation("Assets/Foo/Gen.cfg", Empty())
	require.NoError(t, err)
	assert.Equal(t, "Assets/Foo/Gen.generated.controller", got)
}

func TestResolveAbsoluteIgnoresOwnerFolder(t *testing.T) {
	d := Absolute("/Assets/Bar/Out.controller")
	for _, folder := range []string{"Assets/Foo/", "Other/Deep/Tree/", ""} {
		assert.Equal(t, "Assets/Bar/Out.controller", Resolve(folder, "Gen", d), "folder %q", folder)
	}
}

func TestResolveAbsoluteStripsSingleSeparator(t *testing.T) {
	assert.Equal(t, "/Assets/Out.controller", Resolve("Assets/", "Gen", Absolute("//Assets/Out.controller")))
	assert.Equal(t, "Assets/Out.controller", Resolve("Assets/", "Gen", Absolute("Assets/Out.controller")))
}

func TestResolveRelativeConcatenatesWithoutCleaning(t *testing.T) {
	got := Resolve("Assets/A/C/", "Gen", Relative("../D/Out.controller"))
	assert.Equal(t, "Assets/A/C/../D/Out.controller", got)
	assert.Equal(t, "Assets/A/D/Out.controller", Canonical(got))
}

func TestOwnerFolderRequiresLocation(t *testing.T) {
	_, err := OwnerFolder("")
	require.ErrorIs(t, err, ErrNotPersisted)

	_, err = ResolveLocation("  ", Relative("Out.controller"))
	require.ErrorIs(t, err, ErrNotPersisted)

	folder, err := OwnerFolder("Assets/Foo/Gen.cfg")
	require.NoError(t, err)
	assert.Equal(t, "Assets/Foo/", folder)

	folder, err = OwnerFolder("Gen.cfg")
	require.NoError(t, err)
	assert.Equal(t, "", folder)
}

func TestOwnerNameDropsLastExtension(t *testing.T) {
	assert.Equal(t, "Gen", OwnerName("Assets/Foo/Gen.cfg"))
	assert.Equal(t, "Gen.v2", OwnerName("Assets/Foo/Gen.v2.cfg"))
	assert.Equal(t, "Gen", OwnerName("Gen"))
}

func TestRewriteIsNoOpForCurrentTarget(t *testing.T) {
	cases := []struct {
		folder string
		desc   Descriptor
	}{
		{"Assets/Foo/", Empty()},
		{"Assets/Foo/", Absolute("/Assets/Bar/Out.controller")},
		{"Assets/Foo/", Relative("../Bar/Out.controller")},
		{"Assets/Foo/", Relative("Out.controller")},
		{"", Relative("Out.controller")},
	}
	for _, tc := range cases {
		resolved := Resolve(tc.folder, "Gen", tc.desc)
		assert.Equal(t, tc.desc, Rewrite(tc.folder, "Gen", tc.desc, resolved), "descriptor %s", tc.desc)
	}
}

func TestRewriteRelativeAfterOwnerMove(t *testing.T) {
	// owner moved from Assets/A/B/ to Assets/A/C/
	d := Relative("Out.controller")
	got := Rewrite("Assets/A/C/", "Gen", d, "Assets/A/D/Out.controller")
	assert.Equal(t, Relative("../D/Out.controller"), got)
	assert.Equal(t, "Assets/A/D/Out.controller", Canonical(Resolve("Assets/A/C/", "Gen", got)))
}

func TestRewriteKeepsAbsoluteKind(t *testing.T) {
	got := Rewrite("Assets/A/", "Gen", Absolute("/Assets/Old.controller"), "Assets/New/Out.controller")
	assert.Equal(t, Absolute("/Assets/New/Out.controller"), got)
}

func TestRewriteEmptyBecomesRelative(t *testing.T) {
	got := Rewrite("Assets/A/", "Gen", Empty(), "Assets/A/Sub/Out.controller")
	assert.Equal(t, Relative("Sub/Out.controller"), got)
}

func TestRewriteAcrossRootsForcesAbsolute(t *testing.T) {
	got := Rewrite("Assets/A/", "Gen", Relative("Out.controller"), "Packages/Lib/Out.controller")
	assert.Equal(t, Absolute("/Packages/Lib/Out.controller"), got)
}

func TestRewriteClimbsToCommonAncestor(t *testing.T) {
	got := Rewrite("Assets/A/B/C/", "Gen", Relative("x.controller"), "Assets/Z/Out.controller")
	assert.Equal(t, Relative("../../../Z/Out.controller"), got)
}

func TestRewriteTargetIsAncestorFolder(t *testing.T) {
	// target shorter than owner folder; prefix is bounded by the shorter count
	got := Rewrite("Assets/A/B/", "Gen", Relative("x.controller"), "Assets/A")
	assert.Equal(t, Relative("../"), got)
}

func TestRewriteTargetIsOwnerFolder(t *testing.T) {
	got := Rewrite("Assets/A/", "Gen", Relative("x.controller"), "Assets/A")
	assert.Equal(t, Relative("."), got)
	require.NoError(t, got.Validate())
	assert.Equal(t, "Assets/A", Canonical(Resolve("Assets/A/", "Gen", got)))
}

func TestRewriteRoundTripsThroughResolve(t *testing.T) {
	targets := []string{
		"Assets/Out.controller",
		"Assets/A/B/C/Out.controller",
		"Assets/A/Out.controller",
		"Assets/Q/R/Out.controller",
	}
	for _, target := range targets {
		d := Rewrite("Assets/A/B/", "Gen", Empty(), target)
		assert.Equal(t, KindRelative, d.Kind)
		assert.Equal(t, target, Canonical(Resolve("Assets/A/B/", "Gen", d)), "target %s", target)
	}
}

func TestEscapes(t *testing.T) {
	assert.True(t, Escapes(Canonical("../etc/passwd")))
	assert.True(t, Escapes(Canonical("Assets/../../x")))
	assert.True(t, Escapes(".."))
	assert.False(t, Escapes(Canonical("Assets/..x/y")))
	assert.False(t, Escapes(Canonical("/Assets/x")))
}

func TestComponentsDropsEmptySegments(t *testing.T) {
	assert.Equal(t, []string{"Assets", "A"}, Components("/Assets/A/"))
	assert.Empty(t, Components(""))
}

func TestDescriptorValidate(t *testing.T) {
	require.NoError(t, Empty().Validate())
	require.NoError(t, Relative("x").Validate())
	require.Error(t, Absolute(" ").Validate())
	require.Error(t, Descriptor{Kind: "sideways", Value: "x"}.Validate())
}
