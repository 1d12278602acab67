package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samvad-hq/waplatform-go/pkg/waapi"
)

type cmdEnv struct {
	client *waapi.Client
	opts   *options
	args   []string
	stdout io.Writer
}

type command struct {
	usage   string
	minArgs int
	run     func(ctx context.Context, env *cmdEnv) (waapi.Result, error)
}

var commands = map[string]map[string]command{
	"sessions": {
		"list": {usage: "[--status s] [--page n] [--limit n]", run: func(ctx context.Context, e *cmdEnv) (waapi.Result, error) {
			return e.client.Sessions.List(ctx, &waapi.SessionListOptions{ListOptions: e.listOptions(), Status: e.opts.status})
		}},
		"create": {usage: "<name> [--webhook-url url]", minArgs: 1, run: func(ctx context.Context, e *cmdEnv) (waapi.Result, error) {
			return e.client.Sessions.Create(ctx, e.args[0], &waapi.CreateSessionOptions{WebhookURL: e.opts.webhookURL})
		}},
		"get": {usage: "<session-id>", minArgs: 1, run: func(ctx context.Context, e *cmdEnv) (waapi.Result, error) {
			return e.client.Sessions.Get(ctx, e.args[0])
		}},
		"delete": {usage: "<session-id>", minArgs: 1, run: func(ctx context.Context, e *cmdEnv) (waapi.Result, error) {
			return e.client.Sessions.Delete(ctx, e.args[0])
		}},
		"qr": {usage: "<session-id> [--png file]", minArgs: 1, run: runSessionQR},
		"reconnect": {usage: "<session-id>", minArgs: 1, run: func(ctx context.Context, e *cmdEnv) (waapi.Result, error) {
			return e.client.Sessions.Reconnect(ctx, e.args[0])
		}},
	},
	"messages": {
		"send": {usage: "<session-id> <to> <text...>", minArgs: 3, run: func(ctx context.Context, e *cmdEnv) (waapi.Result, error) {
			return e.client.Messages.SendText(ctx, e.args[0], e.args[1], strings.Join(e.args[2:], " "))
		}},
		"media": {usage: "<session-id> <to> <file> [--caption c] [--type t]", minArgs: 3, run: func(ctx context.Context, e *cmdEnv) (waapi.Result, error) {
			media, err := waapi.MediaFromFile(e.args[2])
			if err != nil {
				return nil, err
			}
			return e.client.Messages.SendMedia(ctx, e.args[0], e.args[1], media, &waapi.MediaOptions{
				Caption: e.opts.caption,
				Type:    e.opts.mediaType,
			})
		}},
		"location": {usage: "<session-id> <to> <lat> <lng> [--name n] [--address a]", minArgs: 4, run: func(ctx context.Context, e *cmdEnv) (waapi.Result, error) {
			lat, err := strconv.ParseFloat(e.args[2], 64)
			if err != nil {
				return nil, fmt.Errorf("latitude: %w", err)
			}
			lng, err := strconv.ParseFloat(e.args[3], 64)
			if err != nil {
				return nil, fmt.Errorf("longitude: %w", err)
			}
			return e.client.Messages.SendLocation(ctx, e.args[0], e.args[1], lat, lng, &waapi.LocationOptions{
				Name:    e.opts.name,
				Address: e.opts.address,
			})
		}},
		"list": {usage: "[--session id] [--phone p] [--page n] [--limit n]", run: func(ctx context.Context, e *cmdEnv) (waapi.Result, error) {
			return e.client.Messages.List(ctx, &waapi.MessageListOptions{ListOptions: e.listOptions(), SessionID: e.opts.session, Phone: e.opts.phone})
		}},
		"status": {usage: "<message-id>", minArgs: 1, run: func(ctx context.Context, e *cmdEnv) (waapi.Result, error) {
			return e.client.Messages.Status(ctx, e.args[0])
		}},
	},
	"contacts": {
		"list": {usage: "[--session id] [--search q] [--page n] [--limit n]", run: func(ctx context.Context, e *cmdEnv) (waapi.Result, error) {
			return e.client.Contacts.List(ctx, &waapi.ContactListOptions{ListOptions: e.listOptions(), SessionID: e.opts.session, Search: e.opts.search})
		}},
		"sync": {usage: "<session-id>", minArgs: 1, run: func(ctx context.Context, e *cmdEnv) (waapi.Result, error) {
			return e.client.Contacts.Sync(ctx, e.args[0])
		}},
		"export": {usage: "<session-id>", minArgs: 1, run: func(ctx context.Context, e *cmdEnv) (waapi.Result, error) {
			return e.client.Contacts.Export(ctx, e.args[0])
		}},
	},
	"groups": {
		"list": {usage: "[--session id] [--page n] [--limit n]", run: func(ctx context.Context, e *cmdEnv) (waapi.Result, error) {
			return e.client.Groups.List(ctx, &waapi.GroupListOptions{ListOptions: e.listOptions(), SessionID: e.opts.session})
		}},
		"sync": {usage: "<session-id>", minArgs: 1, run: func(ctx context.Context, e *cmdEnv) (waapi.Result, error) {
			return e.client.Groups.Sync(ctx, e.args[0])
		}},
		"leave": {usage: "<group-id>", minArgs: 1, run: func(ctx context.Context, e *cmdEnv) (waapi.Result, error) {
			return e.client.Groups.Leave(ctx, e.args[0])
		}},
	},
	"webhooks": {
		"list": {usage: "", run: func(ctx context.Context, e *cmdEnv) (waapi.Result, error) {
			return e.client.Webhooks.List(ctx)
		}},
		"create": {usage: "<url> <event...> [--inactive]", minArgs: 2, run: func(ctx context.Context, e *cmdEnv) (waapi.Result, error) {
			active := !e.opts.inactive
			return e.client.Webhooks.Create(ctx, e.args[0], e.args[1:], &waapi.CreateWebhookOptions{Active: &active})
		}},
		"test": {usage: "<webhook-id>", minArgs: 1, run: func(ctx context.Context, e *cmdEnv) (waapi.Result, error) {
			return e.client.Webhooks.Test(ctx, e.args[0])
		}},
		"logs": {usage: "<webhook-id> [--page n] [--limit n]", minArgs: 1, run: func(ctx context.Context, e *cmdEnv) (waapi.Result, error) {
			opts := e.listOptions()
			return e.client.Webhooks.Logs(ctx, e.args[0], &opts)
		}},
	},
}

func lookup(resource, action string) (command, error) {
	actions, ok := commands[resource]
	if !ok {
		return command{}, fmt.Errorf("unknown resource %q", resource)
	}
	cmd, ok := actions[action]
	if !ok {
		return command{}, fmt.Errorf("unknown action %q for %s", action, resource)
	}
	return cmd, nil
}

func (e *cmdEnv) listOptions() waapi.ListOptions {
	return waapi.ListOptions{Page: e.opts.page, Limit: e.opts.limit}
}
