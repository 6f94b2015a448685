package scene

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/df07/go-bvh-raytracer/pkg/core"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Name passed to Open
	Name        string `json:"name"`        // Scene name
	Description string `json:"description"` // Optional description
	Type        string `json:"type"`        // "builtin" or "file"
	FilePath    string `json:"filePath"`    // Path to the YAML file (file type only)
}

type builtin struct {
	info SceneInfo
	new  func(core.Accelerator) (*Scene, error)
}

var builtins = map[string]builtin{
	"default": {
		info: SceneInfo{Name: "Default Scene", Description: "Three spheres and a triangle on a checkered plane"},
		new:  NewDefaultScene,
	},
	"spheregrid": {
		info: SceneInfo{Name: "Sphere Grid", Description: "10x10 grid of hue-varied spheres"},
		new:  NewSphereGridScene,
	},
	"grid1000": {
		info: SceneInfo{Name: "Grid 1000", Description: "1000 small spheres in a lattice, a BVH stress test"},
		new:  NewGrid1000Scene,
	},
}

// Names returns the built-in scene names in sorted order.
func Names() []string {
	names := lo.Keys(builtins)
	sort.Strings(names)
	return names
}

// New creates the named built-in scene on accel. A nil accel means a default BVH.
func New(name string, accel core.Accelerator) (*Scene, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, core.Invalidf("unknown scene %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	if accel == nil {
		var err error
		if accel, err = core.NewAccelerator(core.KindBVH); err != nil {
			return nil, err
		}
	}
	return b.new(accel)
}

// Open creates a built-in scene by name, or loads a YAML scene when id names a
// .yaml/.yml file. A non-empty accelKind replaces the scene's own accelerator kind.
func Open(id, accelKind string) (*Scene, error) {
	if isSceneFile(id) {
		file, err := ReadFile(id)
		if err != nil {
			return nil, err
		}
		if accelKind != "" {
			file.Accelerator.Kind = accelKind
		}
		return file.load(id)
	}

	var accel core.Accelerator
	if accelKind != "" {
		var err error
		if accel, err = core.NewAccelerator(accelKind); err != nil {
			return nil, err
		}
	}
	return New(id, accel)
}

// ListScenes returns the built-in scenes followed by the YAML scenes in dir, sorted by
// name. A missing dir is not an error. Files whose metadata cannot be read are logged
// and skipped.
func ListScenes(dir string, logger *zap.SugaredLogger) ([]SceneInfo, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	scenes := lo.Map(Names(), func(name string, _ int) SceneInfo {
		info := builtins[name].info
		info.ID = name
		info.Type = "builtin"
		return info
	})
	if dir == "" {
		return scenes, nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return scenes, nil
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan scenes directory")
		}
		files = append(files, matches...)
	}

	var found []SceneInfo
	for _, path := range files {
		info, err := ParseSceneMetadata(path)
		if err != nil {
			logger.Warnw("failed to parse scene metadata", "path", path, "error", err)
			continue
		}
		found = append(found, info)
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].Name < found[j].Name
	})
	return append(scenes, found...), nil
}

// ParseSceneMetadata extracts metadata from the header comments of a YAML scene:
//
//	# Scene: Glossy Bunny
//	# Description: Stanford bunny on a mirror floor
func ParseSceneMetadata(path string) (SceneInfo, error) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	info := SceneInfo{
		ID:       path,
		Name:     titleCase(base),
		Type:     "file",
		FilePath: path,
	}

	file, err := os.Open(path)
	if err != nil {
		return info, errors.Wrap(err, "failed to open scene file")
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Stop parsing at first non-comment line
		if !strings.HasPrefix(line, "#") {
			break
		}
		content := strings.TrimSpace(strings.TrimPrefix(line, "#"))
		if v, ok := strings.CutPrefix(content, "Scene:"); ok {
			info.Name = strings.TrimSpace(v)
		} else if v, ok := strings.CutPrefix(content, "Description:"); ok {
			info.Description = strings.TrimSpace(v)
		}
	}
	return info, scanner.Err()
}

func isSceneFile(id string) bool {
	ext := strings.ToLower(filepath.Ext(id))
	return ext == ".yaml" || ext == ".yml"
}

// titleCase converts a filename-style string to title case
// e.g., "cornell-empty" -> "Cornell Empty"
func titleCase(s string) string {
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	words := lo.Map(strings.Fields(s), func(word string, _ int) string {
		return strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	})
	return strings.Join(words, " ")
}
