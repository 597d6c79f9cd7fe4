package docker

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Snapshot is a point-in-time reading of a container's cgroup v2 counters
type Snapshot struct {
	CPUUsage    time.Duration // cpu.stat usage_usec
	MemoryBytes uint64        // memory.current
	ReadBytes   uint64        // io.stat rbytes, all devices
	WriteBytes  uint64        // io.stat wbytes, all devices
	Timestamp   time.Time
}

// Usage is the resource consumption of a target between two snapshots
type Usage struct {
	CPUSeconds   float64 `json:"cpu_seconds"`
	CPUPercent   float64 `json:"cpu_percent"` // of one core
	MemoryBytes  uint64  `json:"memory_bytes"`
	ReadMBps     float64 `json:"read_mb_per_sec"`
	WriteMBps    float64 `json:"write_mb_per_sec"`
	WindowLength float64 `json:"window_seconds"`
}

// ContainerSnapshot reads the cgroup counters of a running container
func ContainerSnapshot(containerName string) (*Snapshot, error) {
	cgroupPath, err := findContainerCgroupPath(containerName)
	if err != nil {
		return nil, fmt.Errorf("failed to find container cgroup: %w", err)
	}
	return ReadSnapshot(cgroupPath)
}

// ReadSnapshot reads cpu.stat, memory.current and io.stat from a cgroup v2
// directory. Missing io.stat is tolerated; it is absent when no block device
// was touched.
func ReadSnapshot(cgroupPath string) (*Snapshot, error) {
	snap := &Snapshot{Timestamp: time.Now()}

	usec, err := readKeyedValue(filepath.Join(cgroupPath, "cpu.stat"), "usage_usec")
	if err != nil {
		return nil, err
	}
	snap.CPUUsage = time.Duration(usec) * time.Microsecond

	raw, err := os.ReadFile(filepath.Join(cgroupPath, "memory.current"))
	if err != nil {
		return nil, fmt.Errorf("failed to read memory.current: %w", err)
	}
	snap.MemoryBytes, err = strconv.ParseUint(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse memory.current: %w", err)
	}

	if err := readIOStat(filepath.Join(cgroupPath, "io.stat"), snap); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return snap, nil
}

// CalculateUsage derives usage figures from two snapshots
func CalculateUsage(start, end *Snapshot) Usage {
	window := end.Timestamp.Sub(start.Timestamp).Seconds()
	if window <= 0 {
		return Usage{MemoryBytes: end.MemoryBytes}
	}

	cpu := max(end.CPUUsage-start.CPUUsage, 0).Seconds()
	return Usage{
		CPUSeconds:   cpu,
		CPUPercent:   cpu / window * 100,
		MemoryBytes:  end.MemoryBytes,
		ReadMBps:     float64(counterDelta(start.ReadBytes, end.ReadBytes)) / window / (1024 * 1024),
		WriteMBps:    float64(counterDelta(start.WriteBytes, end.WriteBytes)) / window / (1024 * 1024),
		WindowLength: window,
	}
}

// counterDelta is end-start, or 0 when the counter was reset in between
// (container restart)
func counterDelta(start, end uint64) uint64 {
	if end < start {
		return 0
	}
	return end - start
}

// readKeyedValue reads "key value" lines and returns the value for key
func readKeyedValue(path, key string) (uint64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 2 && fields[0] == key {
			return strconv.ParseUint(fields[1], 10, 64)
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("error reading %s: %w", filepath.Base(path), err)
	}
	return 0, fmt.Errorf("%s not found in %s", key, filepath.Base(path))
}

// readIOStat sums rbytes and wbytes over all devices.
// Format: <major>:<minor> rbytes=X wbytes=Y rios=Z wios=W
func readIOStat(path string, snap *Snapshot) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		for _, field := range fields[1:] {
			key, raw, ok := strings.Cut(field, "=")
			if !ok {
				continue
			}
			value, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				continue
			}
			switch key {
			case "rbytes":
				snap.ReadBytes += value
			case "wbytes":
				snap.WriteBytes += value
			}
		}
	}
	return scanner.Err()
}

// findContainerCgroupPath finds the cgroup v2 directory of a Docker container
func findContainerCgroupPath(containerName string) (string, error) {
	containerID, err := getContainerID(containerName)
	if err != nil {
		return "", err
	}

	possiblePaths := []string{
		fmt.Sprintf("/sys/fs/cgroup/system.slice/docker-%s.scope", containerID),
		fmt.Sprintf("/sys/fs/cgroup/docker/%s", containerID),
	}
	for _, path := range possiblePaths {
		if _, err := os.Stat(filepath.Join(path, "cpu.stat")); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("could not find cgroup path for container %s (ID: %s)", containerName, containerID)
}

// getContainerID resolves a container name to its full ID
func getContainerID(containerName string) (string, error) {
	cmd := exec.Command("docker", "ps", "--filter", "name="+containerName, "--format", "{{.ID}}", "--no-trunc")

	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to run docker ps: %w", err)
	}

	containerID := strings.TrimSpace(out.String())
	if containerID == "" {
		return "", fmt.Errorf("container not found: %s", containerName)
	}
	// A name filter may match several containers; the first line is the best match
	if i := strings.IndexByte(containerID, '\n'); i >= 0 {
		containerID = containerID[:i]
	}
	return containerID, nil
}
