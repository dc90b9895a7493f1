package treefs

import (
	"fmt"
	"net"
	"os/exec"
	"runtime"

	billy "github.com/go-git/go-billy/v5"
	nfs "github.com/willscott/go-nfs"
	nfshelper "github.com/willscott/go-nfs/helpers"
)

// Server exports a filesystem over NFSv3.
type Server struct {
	listener net.Listener
	port     int
}

// NewServer serves fs on an ephemeral localhost port.
func NewServer(fs billy.Filesystem) (*Server, error) {
	listener, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return nil, fmt.Errorf("nfs listen: %w", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port

	handler := nfshelper.NewNullAuthHandler(fs)
	cached := nfshelper.NewCachingHandler(handler, 4096)

	go func() {
		_ = nfs.Serve(listener, cached)
	}()

	return &Server{listener: listener, port: port}, nil
}

// Port returns the TCP port the server listens on.
func (s *Server) Port() int { return s.port }

// Close stops accepting connections.
func (s *Server) Close() error { return s.listener.Close() }

// Mount mounts the server at mountpoint, read-only. It shells out to
// mount(8) through sudo.
func Mount(port int, mountpoint string) error {
	var opts string
	switch runtime.GOOS {
	case "darwin":
		opts = fmt.Sprintf("port=%d,mountport=%d,vers=3,tcp,locallocks,noresvport,rdonly", port, port)
	case "linux":
		opts = fmt.Sprintf("port=%d,mountport=%d,vers=3,tcp,local_lock=all,nolock,ro", port, port)
	default:
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
	cmd := exec.Command("sudo", "mount", "-t", "nfs", "-o", opts, "localhost:/", mountpoint)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("mount failed: %w\n%s", err, out)
	}
	return nil
}

// Unmount undoes Mount.
func Unmount(mountpoint string) error {
	if runtime.GOOS == "darwin" {
		if err := exec.Command("diskutil", "unmount", mountpoint).Run(); err == nil {
			return nil
		}
	}
	if out, err := exec.Command("sudo", "umount", mountpoint).CombinedOutput(); err != nil {
		return fmt.Errorf("unmount failed: %w\n%s", err, out)
	}
	return nil
}
