// Command eozseed populates a task-tracker snapshot database from a YAML
// fixture. The feed service itself never writes; in development and CI
// the snapshot has to come from somewhere, and this is it.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/regsync/eozfeed/tracker"
)

var (
	dbPath      = flag.String("db", "./data/tracker.db", "path to the snapshot database")
	fixturePath = flag.String("fixture", "fixture.yaml", "path to the YAML fixture")
)

// fixture is the on-disk shape of a tracker snapshot.
type fixture struct {
	Users  []tracker.User `yaml:"users"`
	Roles  []tracker.Role `yaml:"roles"`
	Grants []grant        `yaml:"grants"`
	Tasks  []tracker.Task `yaml:"tasks"`
}

// grant associates a permission with a role.
type grant struct {
	RoleID       string `yaml:"role_id"`
	PermissionID string `yaml:"permission_id"`
}

func main() {
	flag.Parse()

	data, err := os.ReadFile(*fixturePath)
	if err != nil {
		log.Fatalf("Failed to read fixture %s: %v", *fixturePath, err)
	}
	var fx fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		log.Fatalf("Failed to parse fixture %s: %v", *fixturePath, err)
	}

	store, err := tracker.NewSQLiteStore(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open store %s: %v", *dbPath, err)
	}
	defer store.Close()

	ctx := context.Background()

	for i := range fx.Users {
		u := fx.Users[i]
		if u.ID == "" {
			u.ID = uuid.New().String()
		}
		if err := store.InsertUser(ctx, &u); err != nil {
			log.Fatalf("Failed to insert user %s: %v", u.ID, err)
		}
	}
	for i := range fx.Roles {
		r := fx.Roles[i]
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		if err := store.InsertRole(ctx, &r); err != nil {
			log.Fatalf("Failed to insert role %s: %v", r.ID, err)
		}
	}
	for _, g := range fx.Grants {
		if err := store.GrantPermission(ctx, g.RoleID, g.PermissionID); err != nil {
			log.Fatalf("Failed to grant %s to %s: %v", g.PermissionID, g.RoleID, err)
		}
	}
	for i := range fx.Tasks {
		t := fx.Tasks[i]
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		if err := store.InsertTask(ctx, &t); err != nil {
			log.Fatalf("Failed to insert task %s: %v", t.ID, err)
		}
	}

	log.Printf("Seeded %s: %d users, %d roles, %d grants, %d tasks",
		*dbPath, len(fx.Users), len(fx.Roles), len(fx.Grants), len(fx.Tasks))
}
