// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package doctor is the transport boundary to the remote doctor agent
// under evaluation. The doctor is reached over A2A and sees only the
// conversation plus the patient's clinical information; nothing else from
// the pipeline crosses this boundary.
package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2aclient"
	"github.com/a2aproject/a2a-go/a2aclient/agentcard"
	"github.com/rs/zerolog/log"
)

// Agent is a doctor the pipeline can consult. Consult sends one message
// and blocks until the doctor's complete reply is available.
type Agent interface {
	Consult(ctx context.Context, message string) (string, error)
}

// A2AClient talks to a doctor agent over A2A. One client holds one
// conversation: the task and context identifiers from the remote agent's
// responses are threaded into subsequent messages so the doctor sees a
// single continuous consultation.
type A2AClient struct {
	url    string
	client *a2aclient.Client

	taskID    a2a.TaskID
	contextID string
}

// Dial resolves the agent card at baseURL and connects to the doctor
// agent it describes.
func Dial(ctx context.Context, baseURL string) (*A2AClient, error) {
	resolver := agentcard.Resolver{}
	card, err := resolver.Resolve(ctx, baseURL)
	if err != nil {
		return nil, fmt.Errorf("doctor: agent card resolution failed for %s: %w", baseURL, err)
	}

	client, err := a2aclient.NewFromCard(ctx, card)
	if err != nil {
		return nil, fmt.Errorf("doctor: client creation failed for %s: %w", baseURL, err)
	}

	log.Info().Str("url", baseURL).Str("agent", card.Name).Msg("connected to doctor agent")
	return &A2AClient{url: baseURL, client: client}, nil
}

// URL returns the doctor endpoint this client was dialed against.
func (c *A2AClient) URL() string {
	return c.url
}

// Consult sends one message to the doctor and accumulates the streamed
// reply into a single string.
func (c *A2AClient) Consult(ctx context.Context, message string) (string, error) {
	msg := a2a.NewMessage(a2a.MessageRoleUser, a2a.TextPart{Text: message})
	msg.TaskID = c.taskID
	msg.ContextID = c.contextID

	var reply strings.Builder
	req := &a2a.MessageSendParams{Message: msg}
	for event, err := range c.client.SendStreamingMessage(ctx, req) {
		if err != nil {
			return "", fmt.Errorf("doctor: streaming message failed: %w", err)
		}
		c.absorb(&reply, event)
	}

	text := strings.TrimSpace(reply.String())
	if text == "" {
		return "", fmt.Errorf("doctor: empty reply from %s", c.url)
	}
	return text, nil
}

// absorb extracts reply text from one streamed event and records the
// conversation identifiers for the next turn.
func (c *A2AClient) absorb(reply *strings.Builder, event a2a.Event) {
	switch v := event.(type) {
	case *a2a.Message:
		writeParts(reply, v.Parts)
		if v.TaskID != "" {
			c.taskID = v.TaskID
		}
		if v.ContextID != "" {
			c.contextID = v.ContextID
		}

	case *a2a.Task:
		for _, artifact := range v.Artifacts {
			writeParts(reply, artifact.Parts)
		}
		if v.Status.Message != nil {
			writeParts(reply, v.Status.Message.Parts)
		}
		c.taskID = v.ID
		c.contextID = v.ContextID

	case *a2a.TaskArtifactUpdateEvent:
		writeParts(reply, v.Artifact.Parts)
		c.taskID = v.TaskID
		c.contextID = v.ContextID

	case *a2a.TaskStatusUpdateEvent:
		// Non-final status messages are the remote agent's intermediate
		// chatter, not the reply.
		if v.Final && v.Status.Message != nil {
			writeParts(reply, v.Status.Message.Parts)
		}
		c.taskID = v.TaskID
		c.contextID = v.ContextID
	}
}

func writeParts(reply *strings.Builder, parts []a2a.Part) {
	for _, part := range parts {
		if tp, ok := part.(a2a.TextPart); ok {
			reply.WriteString(tp.Text)
		}
	}
}

// Close releases the underlying A2A client.
func (c *A2AClient) Close() error {
	return c.client.Destroy()
}
