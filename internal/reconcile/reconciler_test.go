package reconcile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudovim/sudovim/internal/mirror"
)

type fixture struct {
	root string
	dir  string
	r    *Reconciler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	// temp dirs can sit behind symlinks (e.g. /var on darwin)
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return &fixture{root: root, dir: dir, r: NewReconciler(root, nil)}
}

func (f *fixture) write(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(f.dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func (f *fixture) mirrored(t *testing.T, p string) bool {
	t.Helper()
	ok, err := mirror.IsMirrored(f.root, p)
	require.NoError(t, err)
	return ok
}

func TestScenarioNewNeverCreated(t *testing.T) {
	f := newFixture(t)
	p := filepath.Join(f.dir, "never.txt")

	rec, err := f.r.Classify(p)
	require.NoError(t, err)
	assert.Equal(t, StateNew, rec.State)
	assert.Empty(t, rec.Path)
	assert.Nil(t, rec.Snapshot)

	out, err := f.r.Reconcile(rec)
	require.NoError(t, err)
	assert.Equal(t, NotCreated, out)
	assert.False(t, f.mirrored(t, p))
}

func TestScenarioNewCreated(t *testing.T) {
	f := newFixture(t)
	p := filepath.Join(f.dir, "sub", "fresh.conf")

	rec, err := f.r.Classify(p)
	require.NoError(t, err)
	require.Equal(t, StateNew, rec.State)

	f.write(t, "sub/fresh.conf", "created by the editor\n")

	out, err := f.r.Reconcile(rec)
	require.NoError(t, err)
	assert.Equal(t, Mirrored, out)
	assert.Equal(t, p, rec.Path)
	assert.True(t, f.mirrored(t, p))
}

func TestScenarioTrackedUnmodified(t *testing.T) {
	f := newFixture(t)
	p := f.write(t, "hosts", "127.0.0.1 localhost\n")

	rec, err := f.r.Classify(p)
	require.NoError(t, err)
	require.Equal(t, StateTracked, rec.State)
	require.NotNil(t, rec.Snapshot)
	assert.Equal(t, int64(len("127.0.0.1 localhost\n")), rec.Snapshot.Size)

	// rewritten with identical bytes, as editors do on :w
	f.write(t, "hosts", "127.0.0.1 localhost\n")

	out, err := f.r.Reconcile(rec)
	require.NoError(t, err)
	assert.Equal(t, Unmodified, out)
	assert.False(t, f.mirrored(t, p))
}

func TestScenarioTrackedModified(t *testing.T) {
	cases := []struct {
		name   string
		before string
		after  string
	}{
		{"size-differs", "PermitRootLogin yes\n", "PermitRootLogin prohibit-password\n"},
		{"same-size-digest-differs", "PermitRootLogin yes\n", "PermitRootLogin no!\n"},
		{"emptied", "something\n", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := newFixture(t)
			p := f.write(t, "sshd_config", c.before)

			rec, err := f.r.Classify(p)
			require.NoError(t, err)
			require.Equal(t, StateTracked, rec.State)

			f.write(t, "sshd_config", c.after)

			out, err := f.r.Reconcile(rec)
			require.NoError(t, err)
			assert.Equal(t, Mirrored, out)
			assert.True(t, f.mirrored(t, p))
		})
	}
}

func TestScenarioExisting(t *testing.T) {
	f := newFixture(t)
	p := f.write(t, "fstab", "old\n")
	require.NoError(t, mirror.Create(f.root, p))

	rec, err := f.r.Classify(p)
	require.NoError(t, err)
	assert.Equal(t, StateExisting, rec.State)
	assert.Nil(t, rec.Snapshot)

	f.write(t, "fstab", "changed\n")

	// a second Create would fail, so AlreadyMirrored proves it was skipped
	out, err := f.r.Reconcile(rec)
	require.NoError(t, err)
	assert.Equal(t, AlreadyMirrored, out)
}

func TestTrackedDeletedByEdit(t *testing.T) {
	f := newFixture(t)
	p := f.write(t, "doomed", "bye\n")

	rec, err := f.r.Classify(p)
	require.NoError(t, err)
	require.NoError(t, os.Remove(p))

	out, err := f.r.Reconcile(rec)
	require.NoError(t, err)
	assert.Equal(t, Mirrored, out)
	assert.True(t, f.mirrored(t, p))
}

func TestDeletedThenRecreated(t *testing.T) {
	f := newFixture(t)
	p := f.write(t, "cycle.conf", "v1\n")

	rec, err := f.r.Classify(p)
	require.NoError(t, err)
	require.NoError(t, os.Remove(p))
	out, err := f.r.Reconcile(rec)
	require.NoError(t, err)
	require.Equal(t, Mirrored, out)

	// next run: the file is gone, so it classifies as new, but the dangling
	// mirror from the deletion still holds the slot
	rec, err = f.r.Classify(p)
	require.NoError(t, err)
	require.Equal(t, StateNew, rec.State)

	f.write(t, "cycle.conf", "v2\n")

	out, err = f.r.Reconcile(rec)
	require.NoError(t, err)
	assert.Equal(t, AlreadyMirrored, out)
	assert.Equal(t, p, rec.Path)

	slot, err := mirror.Slot(f.root, p)
	require.NoError(t, err)
	link, err := os.Readlink(slot)
	require.NoError(t, err)
	assert.Equal(t, p, link)
}

func TestClassifyIdempotent(t *testing.T) {
	f := newFixture(t)
	p := f.write(t, "motd", strings.Repeat("welcome\n", 100))

	first, err := f.r.Classify(p)
	require.NoError(t, err)
	second, err := f.r.Classify(p)
	require.NoError(t, err)

	assert.Equal(t, first.State, second.State)
	assert.Equal(t, first.Path, second.Path)
	assert.Equal(t, *first.Snapshot, *second.Snapshot)
}

func TestClassifyReusesBufferAcrossFiles(t *testing.T) {
	f := newFixture(t)
	big := f.write(t, "big", strings.Repeat("x", 4096))
	small := f.write(t, "small", "yy")

	bigRec, err := f.r.Classify(big)
	require.NoError(t, err)
	smallRec, err := f.r.Classify(small)
	require.NoError(t, err)

	assert.Equal(t, int64(4096), bigRec.Snapshot.Size)
	assert.Equal(t, int64(2), smallRec.Snapshot.Size)

	fresh, err := NewReconciler(f.root, nil).Classify(small)
	require.NoError(t, err)
	assert.Equal(t, *fresh.Snapshot, *smallRec.Snapshot)
}

func TestClassifyResolvesRelativeAndSymlinkedInput(t *testing.T) {
	f := newFixture(t)
	target := f.write(t, "real.conf", "v=1\n")
	link := filepath.Join(f.dir, "link.conf")
	require.NoError(t, os.Symlink(target, link))

	rec, err := f.r.Classify(link)
	require.NoError(t, err)
	assert.Equal(t, target, rec.Path)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(f.dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	rec, err = f.r.Classify("real.conf")
	require.NoError(t, err)
	assert.Equal(t, target, rec.Path)
	assert.Equal(t, "real.conf", rec.Input)
}

func TestClassifyDirectoryFails(t *testing.T) {
	f := newFixture(t)
	dir := filepath.Join(f.dir, "adir")
	require.NoError(t, os.Mkdir(dir, 0o755))

	_, err := f.r.Classify(dir)
	require.Error(t, err)
}

func TestReconcileMirrorFailureIsReported(t *testing.T) {
	f := newFixture(t)
	p := f.write(t, "nested/file", "a")

	rec, err := f.r.Classify(p)
	require.NoError(t, err)

	// occupy the mirror slot between snapshot and reconcile
	require.NoError(t, mirror.Create(f.root, p))
	f.write(t, "nested/file", "b")

	out, err := f.r.Reconcile(rec)
	require.ErrorIs(t, err, mirror.ErrAlreadyMirrored)
	assert.Equal(t, NotCreated, out)
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "new", StateNew.String())
	assert.Equal(t, "existing", StateExisting.String())
	assert.Equal(t, "tracked", StateTracked.String())
	assert.Equal(t, "not created", NotCreated.String())
	assert.Equal(t, "mirrored", Mirrored.String())
	assert.Equal(t, "already mirrored", AlreadyMirrored.String())
	assert.Equal(t, "unmodified", Unmodified.String())
}

func TestSnapshotEqual(t *testing.T) {
	a := Snapshot{Size: 3, Digest: 42}
	assert.True(t, a.Equal(Snapshot{Size: 3, Digest: 42}))
	assert.False(t, a.Equal(Snapshot{Size: 4, Digest: 42}))
	assert.False(t, a.Equal(Snapshot{Size: 3, Digest: 43}))
}
