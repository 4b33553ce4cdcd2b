package assetdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/regen/internal/artifact"
)

func writeProjectFile(t *testing.T, root, projectPath, content string) {
	t.Helper()
	osPath := filepath.Join(root, filepath.FromSlash(projectPath))
	require.NoError(t, os.MkdirAll(filepath.Dir(osPath), 0o755))
	require.NoError(t, os.WriteFile(osPath, []byte(content), 0o644))
}

func writeMeta(t *testing.T, root, projectPath, guid string) {
	t.Helper()
	data, err := artifact.EncodeMeta(guid)
	require.NoError(t, err)
	writeProjectFile(t, root, artifact.MetaPath(projectPath), string(data))
}

func TestRefreshIndexesMetadata(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "Assets/Out.controller", artifact.BootstrapTemplate)
	writeMeta(t, root, "Assets/Out.controller", "AAAA-BBBB")
	writeProjectFile(t, root, ".regen/hidden.controller", artifact.BootstrapTemplate)
	writeMeta(t, root, ".regen/hidden.controller", "cccc")

	db, err := Open(root)
	require.NoError(t, err)

	p, ok := db.FindPathByIdentifier("aaaabbbb")
	require.True(t, ok)
	assert.Equal(t, "Assets/Out.controller", p)

	p, ok = db.FindPathByIdentifier("{AAAA-BBBB}")
	require.True(t, ok, "lookup normalizes separators")
	assert.Equal(t, "Assets/Out.controller", p)

	_, ok = db.FindPathByIdentifier("cccc")
	assert.False(t, ok, "dot directories are not indexed")

	_, ok = db.FindPathByIdentifier("")
	assert.False(t, ok)
}

func TestRefreshKeepsFirstDuplicate(t *testing.T) {
	root := t.TempDir()
	writeMeta(t, root, "Assets/A.controller", "dup")
	writeMeta(t, root, "Assets/B.controller", "dup")
	db, err := Open(root)
	require.NoError(t, err)
	p, ok := db.FindPathByIdentifier("dup")
	require.True(t, ok)
	assert.Equal(t, "Assets/A.controller", p)
}

func TestLoadByPathClassifiesObjects(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "Assets/Out.controller", artifact.BootstrapTemplate)
	writeProjectFile(t, root, "Assets/Tex.asset", "kind: Texture\n")
	writeProjectFile(t, root, "Assets/blob.bin", "\x00\x01\x02")
	db, err := Open(root)
	require.NoError(t, err)

	obj, err := db.LoadByPath("Assets/Out.controller")
	require.NoError(t, err)
	a, ok := obj.(*artifact.Artifact)
	require.True(t, ok)
	assert.Equal(t, "Assets/Out.controller", a.AssetPath())

	again, err := db.LoadByPath("Assets/./Out.controller")
	require.NoError(t, err)
	assert.Same(t, a, again, "repeated loads share the handle")

	obj, err = db.LoadByPath("Assets/Tex.asset")
	require.NoError(t, err)
	assert.Equal(t, "Texture", obj.ObjectKind())

	obj, err = db.LoadByPath("Assets/blob.bin")
	require.NoError(t, err)
	assert.Equal(t, kindUnknown, obj.ObjectKind())

	obj, err = db.LoadByPath("Assets")
	require.NoError(t, err)
	assert.Equal(t, kindFolder, obj.ObjectKind())

	obj, err = db.LoadByPath("Assets/missing.controller")
	require.NoError(t, err)
	assert.Nil(t, obj)
}

func TestDestroySubAssetsAndSave(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "Assets/Out.controller", artifact.BootstrapTemplate)
	db, err := Open(root)
	require.NoError(t, err)

	obj, err := db.LoadByPath("Assets/Out.controller")
	require.NoError(t, err)
	a := obj.(*artifact.Artifact)
	_, err = a.AddSubAsset("Base", "Motion", "Idle", nil)
	require.NoError(t, err)
	_, err = a.AddSubAsset("Base", "Motion", "Walk", nil)
	require.NoError(t, err)

	objects, err := db.ListCoLocatedObjects("Assets/Out.controller")
	require.NoError(t, err)
	require.Len(t, objects, 3)
	assert.Same(t, a, objects[0])

	require.Error(t, db.Destroy(objects[0]), "roots are never destroyed")
	for _, o := range objects[1:] {
		require.NoError(t, db.Destroy(o))
	}
	assert.Empty(t, a.SubAssets)
	assert.True(t, db.IsDirty("Assets/Out.controller"))

	written, err := db.SaveDirty()
	require.NoError(t, err)
	assert.Equal(t, []string{"Assets/Out.controller"}, written)
	assert.False(t, db.IsDirty("Assets/Out.controller"))
}

func TestRefreshEvictsCleanHandles(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "Assets/Out.controller", artifact.BootstrapTemplate)
	writeProjectFile(t, root, "Assets/Dirty.controller", artifact.BootstrapTemplate)
	db, err := Open(root)
	require.NoError(t, err)

	clean, err := db.LoadByPath("Assets/Out.controller")
	require.NoError(t, err)
	dirty, err := db.LoadByPath("Assets/Dirty.controller")
	require.NoError(t, err)
	db.MarkDirty(dirty)
	require.True(t, db.Contains(clean))

	require.NoError(t, db.Refresh())
	assert.False(t, db.Contains(clean))
	assert.True(t, db.Contains(dirty))

	reloaded, err := db.LoadByPath("Assets/Out.controller")
	require.NoError(t, err)
	assert.NotSame(t, clean, reloaded)
}

func TestWriteFileRejectsEscapes(t *testing.T) {
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	require.Error(t, db.WriteFile("../outside.controller", []byte("x")))
	require.NoError(t, db.WriteFile("Assets/New/Out.controller", []byte(artifact.BootstrapTemplate)))
	assert.True(t, db.Exists("Assets/New/Out.controller"))
}

func TestIdentifierAtPath(t *testing.T) {
	root := t.TempDir()
	writeMeta(t, root, "Assets/Out.controller", "abc")
	db, err := Open(root)
	require.NoError(t, err)
	id, ok := db.IdentifierAtPath("Assets/./Out.controller")
	require.True(t, ok)
	assert.Equal(t, "abc", id)
	_, ok = db.IdentifierAtPath("Assets/Other.controller")
	assert.False(t, ok)
}
