package interactions

import (
	"github.com/bwmarrin/discordgo"
)

const (
	brandColor    = 0x0C00B6
	buttonsPerRow = 5
	maxRows       = 5
	maxTitleLen   = 45
)

// ButtonStyle mirrors the platform's button colors
type ButtonStyle int

const (
	StylePrimary ButtonStyle = iota
	StyleSecondary
	StyleSuccess
	StyleDanger
)

// Button is a clickable component; pressing it dispatches ActionID
type Button struct {
	Label    string
	Style    ButtonStyle
	ActionID string
}

// Field is one embed field
type Field struct {
	Name  string
	Value string
}

// Embed is the rich body of a reply
type Embed struct {
	Title       string
	Description string
	Image       string
	Footer      string
	Fields      []Field
}

// TextInput is one modal field
type TextInput struct {
	ID          string
	Label       string
	Value       string
	Placeholder string
	Paragraph   bool
	Optional    bool
}

// Modal is a form; submitting it dispatches ActionID with the input values
type Modal struct {
	ActionID string
	Title    string
	Inputs   []TextInput
}

// Reply is what a handler answers with. A reply carrying a Modal opens it and
// ignores everything else.
type Reply struct {
	Content   string
	Embed     *Embed
	Buttons   []Button
	Ephemeral bool
	Modal     *Modal
}

func private(content string) *Reply {
	return &Reply{Content: content, Ephemeral: true}
}

func (s ButtonStyle) discord() discordgo.ButtonStyle {
	switch s {
	case StyleSecondary:
		return discordgo.SecondaryButton
	case StyleSuccess:
		return discordgo.SuccessButton
	case StyleDanger:
		return discordgo.DangerButton
	}
	return discordgo.PrimaryButton
}

func (e *Embed) message() *discordgo.MessageEmbed {
	m := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       brandColor,
	}
	if e.Image != "" {
		m.Image = &discordgo.MessageEmbedImage{URL: e.Image}
	}
	if e.Footer != "" {
		m.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}
	for _, f := range e.Fields {
		m.Fields = append(m.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value})
	}
	return m
}

func buttonRows(buttons []Button) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	for start := 0; start < len(buttons) && len(rows) < maxRows; start += buttonsPerRow {
		end := min(start+buttonsPerRow, len(buttons))
		row := discordgo.ActionsRow{}
		for _, b := range buttons[start:end] {
			row.Components = append(row.Components, discordgo.Button{
				Label:    b.Label,
				Style:    b.Style.discord(),
				CustomID: b.ActionID,
			})
		}
		rows = append(rows, row)
	}
	return rows
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// response converts the reply to an interaction response
func (r *Reply) response() *discordgo.InteractionResponse {
	if r.Modal != nil {
		var rows []discordgo.MessageComponent
		for _, in := range r.Modal.Inputs {
			style := discordgo.TextInputShort
			if in.Paragraph {
				style = discordgo.TextInputParagraph
			}
			rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:    in.ID,
					Label:       in.Label,
					Style:       style,
					Value:       in.Value,
					Placeholder: in.Placeholder,
					Required:    !in.Optional,
				},
			}})
		}
		return &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseModal,
			Data: &discordgo.InteractionResponseData{
				CustomID:   r.Modal.ActionID,
				Title:      truncate(r.Modal.Title, maxTitleLen),
				Components: rows,
			},
		}
	}

	data := &discordgo.InteractionResponseData{
		Content:    r.Content,
		Components: buttonRows(r.Buttons),
	}
	if r.Embed != nil {
		data.Embeds = []*discordgo.MessageEmbed{r.Embed.message()}
	}
	if r.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}
}

// followup converts the reply to a follow-up message for a deferred interaction
func (r *Reply) followup() *discordgo.WebhookParams {
	params := &discordgo.WebhookParams{
		Content:    r.Content,
		Components: buttonRows(r.Buttons),
		Flags:      discordgo.MessageFlagsEphemeral,
	}
	if r.Embed != nil {
		params.Embeds = []*discordgo.MessageEmbed{r.Embed.message()}
	}
	return params
}
