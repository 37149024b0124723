package httpapi

import (
	"context"
	"fmt"
	"time"

	"clubhub/internal/accounts"
	"clubhub/internal/directory"
	"clubhub/internal/rbac"
)

// DemoAccount is a seeded login; passwords are for local use only.
type DemoAccount struct {
	Email    string
	Password string
	Role     rbac.Role
}

var DemoAccounts = []DemoAccount{
	{Email: "admin@clubhub.test", Password: "admin-pass-1", Role: rbac.RoleAdmin},
	{Email: "events@clubhub.test", Password: "events-pass-1", Role: rbac.RoleEventAdmin},
	{Email: "student@clubhub.test", Password: "student-pass-1", Role: rbac.RoleStudent},
}

var demoNames = map[rbac.Role][2]string{
	rbac.RoleAdmin:      {"Avery", "Admin"},
	rbac.RoleEventAdmin: {"Evan", "Events"},
	rbac.RoleStudent:    {"Sasha", "Student"},
}

// SeedDemo creates the demo accounts, a few clubs and one upcoming event per club.
func SeedDemo(ctx context.Context, acc *accounts.Service, dir *directory.Service, now time.Time) error {
	users := map[rbac.Role]accounts.User{}
	for _, a := range DemoAccounts {
		name := demoNames[a.Role]
		u, err := acc.Register(ctx, accounts.Registration{
			Email: a.Email, Password: a.Password, FirstName: name[0], LastName: name[1], Role: a.Role,
		})
		if err != nil {
			return fmt.Errorf("seed %s: %w", a.Email, err)
		}
		users[a.Role] = u
	}

	clubs := []directory.ClubInput{
		{Name: "Lens Society", Description: "Photography walks and darkroom nights", Category: "Photography", MeetingTime: "Saturdays 15:00", Location: "Media Center", Email: "lens@clubhub.test"},
		{Name: "Rhythm Collective", Description: "Dance of every style", Category: "Dance", MeetingTime: "Tue & Thu 17:00", Location: "Dance Studio", Email: "rhythm@clubhub.test"},
		{Name: "Respawn", Description: "Gaming and esports", Category: "Gaming", MeetingTime: "Fridays 16:00", Location: "Gaming Arena", Email: "respawn@clubhub.test"},
	}
	for _, in := range clubs {
		club, err := dir.CreateClub(ctx, users[rbac.RoleAdmin].ID, in)
		if err != nil {
			return fmt.Errorf("seed club %s: %w", in.Name, err)
		}
		_, err = dir.CreateEvent(ctx, users[rbac.RoleEventAdmin].ID, directory.EventInput{
			Title:       club.Name + " Workshop",
			Description: "Introductory workshop for " + club.Name,
			Date:        now.Add(7 * 24 * time.Hour),
			Location:    club.Location,
			ClubID:      club.ID,
		})
		if err != nil {
			return fmt.Errorf("seed event for %s: %w", club.Name, err)
		}
	}
	return nil
}
