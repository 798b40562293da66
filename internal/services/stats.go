package services

import (
	"context"

	"github.com/dmitrijs2005/gatehouse/internal/models"
)

// Stats is a point-in-time count of directory records.
type Stats struct {
	Total  int
	Active int
	Admins int
	ByRole map[models.Role]int
	Groups int
	ACLs   int
}

func (d *Directory) Stats(ctx context.Context) (Stats, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	all, err := d.repomanager.Users().List(ctx)
	if err != nil {
		return Stats{}, err
	}
	groups, err := d.repomanager.Groups().List(ctx)
	if err != nil {
		return Stats{}, err
	}
	acls, err := d.repomanager.ACLs().List(ctx)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		Total:  len(all),
		ByRole: make(map[models.Role]int, len(models.Roles())),
		Groups: len(groups),
		ACLs:   len(acls),
	}
	for _, u := range all {
		st.ByRole[u.Role]++
		if u.IsActive {
			st.Active++
		}
		if u.IsActiveAdmin() {
			st.Admins++
		}
	}
	return st, nil
}
