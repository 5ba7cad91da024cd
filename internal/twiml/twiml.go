// Package twiml renders Twilio's XML reply markup.
//
// A webhook response is a <Response> document whose verbs tell Twilio what
// to do next; the only verb the gateway emits is <Message>, which sends a
// text back to the original sender. Rendering is deterministic and entity
// escaping is handled by encoding/xml, so reply text containing <, > or &
// can never break the document.
package twiml

import (
	"encoding/xml"
	"fmt"

	"github.com/pigeonhq/pigeon/internal/twilio"
)

// ContentType is the media type Twilio expects for TwiML replies.
const ContentType = "application/xml; charset=utf-8"

// Response is the root TwiML document.
type Response struct {
	XMLName  xml.Name  `xml:"Response"`
	Messages []Message `xml:"Message"`
}

// Message is the TwiML verb instructing Twilio to send a text reply.
type Message struct {
	Body string `xml:",chardata"`
}

// Render serializes the document with the XML declaration, UTF-8 encoded,
// indented to match Twilio's documented examples.
func (r *Response) Render() ([]byte, error) {
	body, err := xml.MarshalIndent(r, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("render twiml: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

// ReplyPolicy decides the reply text for an inbound message. The gateway's
// handler is policy agnostic; swapping this is how echo, routing or
// templated replies get introduced without touching callers.
type ReplyPolicy interface {
	Reply(msg twilio.InboundMessage) string
}

// StaticReply answers every message with the same configured text.
type StaticReply struct {
	Text string
}

func (p StaticReply) Reply(twilio.InboundMessage) string {
	return p.Text
}

// Synthesize builds the reply document for an inbound message under the
// given policy: a single Message verb carrying the policy's reply text.
func Synthesize(msg twilio.InboundMessage, policy ReplyPolicy) *Response {
	return &Response{
		Messages: []Message{{Body: policy.Reply(msg)}},
	}
}
