// Package mount exposes a project tree as a read-only FUSE filesystem, so
// ordinary tools (editors, grep, bundlers) can inspect what the preview sees.
package mount

import (
	"context"
	"os"
	"path"
	"syscall"
	"time"

	"github.com/brettbedarf/previewfs/config"
	"github.com/brettbedarf/previewfs/filesystem"
	"github.com/brettbedarf/previewfs/internal/util"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// Permission bits of mounted nodes; the mount is read-only
const (
	dirPerms  = 0o555
	filePerms = 0o444
)

// entry is one node to mount below the root, listed parents first
type entry struct {
	Parent string
	Name   string
	Dir    bool
	Data   []byte
}

// entries captures tree's nodes, excluding the root, in traversal order
func entries(tree *filesystem.FileTree) []entry {
	var out []entry
	tree.Walk(func(n filesystem.Node) {
		if n.Name == "" {
			return
		}
		e := entry{Parent: path.Dir(n.Path), Name: n.Name, Dir: n.IsDir()}
		if !e.Dir {
			e.Data = []byte(n.Content)
		}
		out = append(out, e)
	})
	return out
}

// dirNode is a read-only directory
type dirNode struct {
	fs.Inode
	mtime time.Time
}

var _ fs.NodeGetattrer = (*dirNode)(nil)

func (d *dirNode) Getattr(_ context.Context, _ fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = fuse.S_IFDIR | dirPerms
	out.SetTimes(nil, &d.mtime, &d.mtime)
	return fs.OK
}

// rootNode populates the whole tree when the mount comes up
type rootNode struct {
	dirNode
	entries []entry
}

var _ fs.NodeOnAdder = (*rootNode)(nil)

func (r *rootNode) OnAdd(ctx context.Context) {
	logger := util.GetLogger("Mount.OnAdd")

	dirs := map[string]*fs.Inode{"/": &r.Inode}
	for _, e := range r.entries {
		parent, ok := dirs[e.Parent]
		if !ok {
			logger.Warn().Str("parent", e.Parent).Str("name", e.Name).Msg("Parent directory missing, skipping node")
			continue
		}
		if e.Dir {
			child := parent.NewPersistentInode(ctx, &dirNode{mtime: r.mtime}, fs.StableAttr{Mode: fuse.S_IFDIR})
			parent.AddChild(e.Name, child, false)
			dirs[path.Join(e.Parent, e.Name)] = child
			continue
		}
		file := &fs.MemRegularFile{
			Data: e.Data,
			Attr: fuse.Attr{Mode: filePerms},
		}
		file.Attr.SetTimes(nil, &r.mtime, &r.mtime)
		child := parent.NewPersistentInode(ctx, file, fs.StableAttr{Mode: fuse.S_IFREG})
		parent.AddChild(e.Name, child, false)
	}
	logger.Debug().Int("nodes", len(r.entries)).Msg("Mounted tree populated")
}

// Mount serves a read-only snapshot of a project tree over FUSE
type Mount struct {
	opts     config.MountOptions
	root     *rootNode
	revision uint64
	server   *fuse.Server
}

// New captures tree's current content for mounting. Later changes to the
// tree are not reflected.
func New(tree *filesystem.FileTree, opts config.MountOptions) *Mount {
	return &Mount{
		opts:     opts,
		root:     &rootNode{dirNode: dirNode{mtime: time.Now()}, entries: entries(tree)},
		revision: tree.Revision(),
	}
}

// Revision returns the tree revision the mount shows
func (m *Mount) Revision() uint64 {
	return m.revision
}

func seconds(v float64) *time.Duration {
	d := time.Duration(v * float64(time.Second))
	return &d
}

// Serve mounts the snapshot at mountPoint and returns once the mount is live
func (m *Mount) Serve(mountPoint string) error {
	logger := util.GetLogger("Mount.Serve")

	srv, err := fs.Mount(mountPoint, m.root, &fs.Options{
		MountOptions: fuse.MountOptions{
			Name:    m.opts.Name,
			FsName:  m.opts.FsName,
			Debug:   m.opts.Debug,
			Options: []string{"ro"},
			Logger:  util.NewLogLogger("FuseServer", util.DebugLevel),
		},
		AttrTimeout:  seconds(m.opts.AttrTimeout),
		EntryTimeout: seconds(m.opts.EntryTimeout),
		UID:          uint32(os.Getuid()),
		GID:          uint32(os.Getgid()),
	})
	if err != nil {
		return err
	}
	m.server = srv
	logger.Info().Str("mountPoint", mountPoint).Uint64("revision", m.revision).Msg("Project tree mounted")
	return nil
}

// ServeAsync mounts in the background. The returned channel receives Serve's
// result and is then closed.
func (m *Mount) ServeAsync(mountPoint string) <-chan error {
	done := make(chan error, 1)

	go func() {
		done <- m.Serve(mountPoint)
		close(done)
	}()

	return done
}

// Wait blocks until the filesystem is unmounted
func (m *Mount) Wait() {
	if m.server != nil {
		m.server.Wait()
	}
}

// Unmount cleanly unmounts the filesystem.
func (m *Mount) Unmount() error {
	if m.server == nil {
		return nil
	}
	return m.server.Unmount()
}
