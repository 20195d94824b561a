package api

import (
	"context"

	"github.com/cumulus-dev/cumulus/internal/transport"
)

func (c *client) ListUsers(ctx context.Context, queries []string, search string) (*UserList, error) {
	var list UserList
	if err := c.call(ctx, transport.MethodGet, "/users", listParams(queries, search), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *client) GetUser(ctx context.Context, userID string) (*User, error) {
	if err := requireAll(param{"userId", userID}); err != nil {
		return nil, err
	}
	var user User
	if err := c.call(ctx, transport.MethodGet, pathf("/users/%s", userID), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *client) CreateUser(ctx context.Context, params CreateUserParams) (*User, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}
	var user User
	err := c.call(ctx, transport.MethodPost, "/users", compact(map[string]any{
		"userId":   params.UserID,
		"email":    params.Email,
		"phone":    params.Phone,
		"password": params.Password,
		"name":     params.Name,
	}), &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *client) DeleteUser(ctx context.Context, userID string) error {
	if err := requireAll(param{"userId", userID}); err != nil {
		return err
	}
	return c.call(ctx, transport.MethodDelete, pathf("/users/%s", userID), nil, nil)
}

func (c *client) ListTeams(ctx context.Context, queries []string, search string) (*TeamList, error) {
	var list TeamList
	if err := c.call(ctx, transport.MethodGet, "/teams", listParams(queries, search), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *client) GetTeam(ctx context.Context, teamID string) (*Team, error) {
	if err := requireAll(param{"teamId", teamID}); err != nil {
		return nil, err
	}
	var team Team
	if err := c.call(ctx, transport.MethodGet, pathf("/teams/%s", teamID), nil, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

func (c *client) CreateTeam(ctx context.Context, teamID, name string, roles []string) (*Team, error) {
	if err := requireAll(param{"teamId", teamID}, param{"name", name}); err != nil {
		return nil, err
	}
	var team Team
	err := c.call(ctx, transport.MethodPost, "/teams", compact(map[string]any{
		"teamId": teamID,
		"name":   name,
		"roles":  roles,
	}), &team)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (c *client) DeleteTeam(ctx context.Context, teamID string) error {
	if err := requireAll(param{"teamId", teamID}); err != nil {
		return err
	}
	return c.call(ctx, transport.MethodDelete, pathf("/teams/%s", teamID), nil, nil)
}
