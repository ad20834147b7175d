package generator

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Prompt 表示发送给 LLM 的消息集合。Model 非空时覆盖客户端默认模型。
type Prompt struct {
	System  string
	User    string
	History []Message
	Model   string
}

// Message 用于回放历史消息（可选），放在用户消息之前。
type Message struct {
	Role    string
	Content string
}

// PlatformContext describes the platform in every system message.
const PlatformContext = `Volandoo is a live tracking platform for hang gliding and paragliding. It also has a logbook for the pilots to keep
track of their flights. Not only this, but Volandoo is also a social network where pilots can comment and like each other's flights.`

// windowDateLayout matches the "Mon Jun 17 2025" style used in post intros.
const windowDateLayout = "Mon Jan 02 2006"

// BlogInput carries everything the weekly blog prompt needs.
type BlogInput struct {
	WindowStart time.Time
	Total       int
	Highlights  int
	Tracks      []NormalizedTrack
	Memories    []string
}

// BuildBlogPrompt builds the weekly blog prompt. The model must answer with a
// bare JSON object holding title, brief, content and image.
func BuildBlogPrompt(in BlogInput) (Prompt, error) {
	payload, err := json.Marshal(in.Tracks)
	if err != nil {
		return Prompt{}, fmt.Errorf("encode tracks: %w", err)
	}

	var sys strings.Builder
	sys.WriteString("You are a blogger for Volandoo. ")
	sys.WriteString(PlatformContext)
	sys.WriteString("\n")
	if len(in.Memories) > 0 {
		sys.WriteString("\nKeep in mind the recent blog themes:\n")
		for _, m := range in.Memories {
			sys.WriteString("- ")
			sys.WriteString(m)
			sys.WriteString("\n")
		}
		sys.WriteString("You aim to maintain tone consistency, avoid repeating phrasing from recent posts, and bring fresh perspective each week.\n")
	}

	n := in.Highlights
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Write a weekly blog post summarizing the top %d paragliding and hang gliding flights from the Volandoo platform.\n", n))
	sb.WriteString("This blog post is for SEO purposes and will be published on the Volandoo website. Optimize the content for relevant keywords such as:\n")
	sb.WriteString(`"paragliding", "hang gliding", "XC flights", "track log", "top pilots", and site names (like "Annecy", "Medellín", etc.).` + "\n\n")
	sb.WriteString("The structure of the post should be:\n")
	sb.WriteString(fmt.Sprintf("1. **Introduction (3-4 sentences)**: Briefly explain what Volandoo is, mention the week's activity and how many total flights were uploaded. Mention that the platform tracks XC flights globally and that this list celebrates the top %d.\n", n))
	sb.WriteString("2. **Flight Highlights (1 paragraph per flight)**: For each flight, include:\n")
	for _, item := range []string{
		"Pilot name (linked to their profile)",
		"Glider name",
		"Flight type (e.g. XC, competition, hike & fly)",
		"Site name",
		"Distance",
		"Duration",
		"Waypoints (if any)",
		"Whether the pilot reached goal (for competition flights)",
		"Any other notable details (e.g. number of thermals, hike count)",
		"Embed a clickable image linking to the track",
	} {
		sb.WriteString("   - ")
		sb.WriteString(item)
		sb.WriteString("\n")
	}
	sb.WriteString("\nVary your phrasing and make the tone friendly, community-driven, and slightly journalistic. Each paragraph should be unique and highlight the pilot's achievement in an enthusiastic but SEO-friendly way.\n\n")
	sb.WriteString(fmt.Sprintf("This is the week of %s, and although we're showcasing only %d flights, there were %d total flights on Volandoo this week. Mention this in the intro.\n\n",
		in.WindowStart.Format(windowDateLayout), n, in.Total))
	sb.WriteString("Use **Markdown format** for the output. Make the image markdown include descriptive alt text for SEO. For example:\n\n")
	sb.WriteString("`[![Flight from Annecy by John Doe](https://example.jpg)](https://volandoo.com/tracks/trackId)`\n\n")
	sb.WriteString("Respond with a JSON object using the following exact format:\n\n")
	sb.WriteString(`{
  "title": "Short catchy blog title with keywords",
  "brief": "2-3 sentence summary of the week's activity with key terms",
  "content": "The blog post content in markdown",
  "image": "Image URL of the first flight's screenshot"
}`)
	sb.WriteString("\n\nOnly include the JSON response. No commentary or prose around it.\n\n")
	sb.WriteString("Here are the tracks:\n\n")
	sb.Write(payload)
	sb.WriteString("\n")

	return Prompt{System: sys.String(), User: sb.String()}, nil
}

const trackSystem = `This pilot just finished their activity and you're given the track. Activities are called "tracks", and these can be
either "flight" or "hike & fly" tracks. Your job is to write a short text about this activity. In the payload you will find the number
of tracks they have recorded with Volandoo so far this year. You should use this information if you can.`

// BuildTrackCommentPrompt asks for a short markdown summary of one track.
func BuildTrackCommentPrompt(t TrackSummary) (Prompt, error) {
	user, err := trackUserMessage(t, 6)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{
		System: PlatformContext + "\n\n" + trackSystem,
		User:   user,
	}, nil
}

// BuildTrackBriefPrompt is like BuildTrackCommentPrompt but shorter, and
// replays earlier briefs so the model avoids repeating them.
func BuildTrackBriefPrompt(t TrackSummary) (Prompt, error) {
	previous := t.Previous
	t.Previous = nil
	user, err := trackUserMessage(t, 3)
	if err != nil {
		return Prompt{}, err
	}

	sys := PlatformContext + "\n\n" + trackSystem
	var history []Message
	if len(previous) > 0 {
		sys += "\n\nEarlier briefs for this pilot are included in the conversation. Do not repeat their themes, openings or phrasing."
		for _, p := range previous {
			history = append(history, Message{Role: "assistant", Content: p})
		}
	}
	return Prompt{System: sys, User: user, History: history}, nil
}

func trackUserMessage(t TrackSummary, maxSentences int) (string, error) {
	payload, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("encode track: %w", err)
	}
	var sb strings.Builder
	sb.WriteString("Here is the track in json format:\n```json\n")
	sb.Write(payload)
	sb.WriteString("\n```\n\n")
	sb.WriteString(fmt.Sprintf("Return the summary in markdown format, don't make it more than %d sentences long. If the \"site\" is unknown, don't mention it.\n", maxSentences))
	sb.WriteString("If \"is_comp\" is true, this is part of a competition, otherwise it is a free flight, don't mention anything related to comps if it's not a comp.\n")
	sb.WriteString("Respond with the markdown text only, no surrounding commentary and no code fences.\n")
	return sb.String(), nil
}

// BuildSMSPrompt wraps an inbound text message.
func BuildSMSPrompt(text string) Prompt {
	return Prompt{
		System: "You are a helpful assistant that can answer questions and help with tasks. " +
			"Replies are delivered by SMS, so respond with plain text only, no markdown and no surrounding commentary.",
		User: fmt.Sprintf("What do you think about %s?", text),
	}
}

// MemoryWordLimit bounds the length of stored memory notes.
const MemoryWordLimit = 100

// BuildMemoryPrompt asks for a short plain text note about a published post.
func BuildMemoryPrompt(c GeneratedContent, windowStart time.Time) Prompt {
	var sb strings.Builder
	sb.WriteString("Summarize this blog post into a short memory note for future reference.\n\n")
	sb.WriteString("The memory should include:\n")
	sb.WriteString(fmt.Sprintf("- The week covered (Week of %s)\n", windowStart.Format("January 2, 2006")))
	sb.WriteString("- The main theme or trend (e.g., \"XC flights with long distances\", \"many pilots reached goal\")\n")
	sb.WriteString("- Any standout flights or names mentioned\n")
	sb.WriteString("- Any change in tone or writing style\n\n")
	sb.WriteString(fmt.Sprintf("Keep it under %d words. Format as plain text, no markdown.\n\n", MemoryWordLimit))
	sb.WriteString("Blog Post:\n")
	sb.WriteString("Title: " + c.Title + "\n")
	sb.WriteString("Brief: " + c.Brief + "\n")
	sb.WriteString("Content: " + c.Content + "\n")
	return Prompt{User: sb.String()}
}
