package defs

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml data/*.json
var dataFS embed.FS

type mobFile struct {
	Mobs []MobDef `yaml:"mobs"`
}

type resourceFile struct {
	Resources []ResourceDef         `yaml:"resources"`
	Biomes    map[string]SpawnTable `yaml:"biomes"`
	Default   SpawnTable            `yaml:"default"`
}

// Load parses and validates the embedded definition tables.
func Load() (*Tables, error) {
	mobs, err := dataFS.ReadFile("data/mobs.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded mobs: %w", err)
	}
	resources, err := dataFS.ReadFile("data/resources.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded resources: %w", err)
	}
	return Parse(mobs, resources)
}

// MustLoad is like Load but panics on error.
func MustLoad() *Tables {
	t, err := Load()
	if err != nil {
		panic(fmt.Sprintf("defs: embedded tables are invalid: %v", err))
	}
	return t
}

// LoadFile parses and validates definition tables from disk.
func LoadFile(mobsPath, resourcesPath string) (*Tables, error) {
	mobs, err := os.ReadFile(mobsPath)
	if err != nil {
		return nil, fmt.Errorf("reading mob table: %w", err)
	}
	resources, err := os.ReadFile(resourcesPath)
	if err != nil {
		return nil, fmt.Errorf("reading resource table: %w", err)
	}
	return Parse(mobs, resources)
}

// Parse validates raw YAML tables against their schemas and builds Tables.
func Parse(mobsYAML, resourcesYAML []byte) (*Tables, error) {
	if err := validate("mobs.schema.json", mobsYAML); err != nil {
		return nil, fmt.Errorf("validating mob table: %w", err)
	}
	if err := validate("resources.schema.json", resourcesYAML); err != nil {
		return nil, fmt.Errorf("validating resource table: %w", err)
	}

	var mf mobFile
	if err := yaml.Unmarshal(mobsYAML, &mf); err != nil {
		return nil, fmt.Errorf("parsing mob table: %w", err)
	}
	var rf resourceFile
	if err := yaml.Unmarshal(resourcesYAML, &rf); err != nil {
		return nil, fmt.Errorf("parsing resource table: %w", err)
	}

	t := &Tables{
		mobs:      mf.Mobs,
		mobIndex:  make(map[string]int, len(mf.Mobs)),
		resources: make(map[string]ResourceDef, len(rf.Resources)),
		spawns:    rf.Biomes,
		fallback:  rf.Default,
	}
	for i := range t.mobs {
		d := &t.mobs[i]
		if _, dup := t.mobIndex[d.ID]; dup {
			return nil, fmt.Errorf("duplicate mob id %q", d.ID)
		}
		d.normalize()
		t.mobIndex[d.ID] = i
	}
	for _, r := range rf.Resources {
		if _, dup := t.resources[r.ID]; dup {
			return nil, fmt.Errorf("duplicate resource id %q", r.ID)
		}
		t.resources[r.ID] = r
	}

	spawnTables := []SpawnTable{t.fallback}
	for _, s := range t.spawns {
		spawnTables = append(spawnTables, s)
	}
	for _, s := range spawnTables {
		for _, n := range s.Nodes {
			if _, ok := t.resources[n.ID]; !ok {
				return nil, fmt.Errorf("spawn table references unknown resource %q", n.ID)
			}
		}
	}

	return t, nil
}

// validate checks a YAML document against an embedded JSON schema. The document is
// round-tripped through JSON so the validator sees JSON types.
func validate(schemaName string, doc []byte) error {
	schemaSrc, err := dataFS.ReadFile("data/" + schemaName)
	if err != nil {
		return fmt.Errorf("reading schema %s: %w", schemaName, err)
	}
	schema, err := jsonschema.CompileString(schemaName, string(schemaSrc))
	if err != nil {
		return fmt.Errorf("compiling schema %s: %w", schemaName, err)
	}

	var raw any
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return fmt.Errorf("parsing yaml: %w", err)
	}
	js, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("converting to json: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("decoding json: %w", err)
	}

	return schema.Validate(v)
}
