package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kmaurinjones/joyfulbytes/internal/model"
)

func buildRankingPrompt(c model.Candidate) string {
	headline := mustJSON(c.Raw)
	return fmt.Sprintf(`# Instruction
You are an expert evaluator for a project dedicated to creating AI-generated illustrations that spread joy and positivity.
Read the following headline and assess how well it aligns with the mission of delivering uplifting, feel-good content that can be transformed into an inspiring illustration.
Also factor in quality of the source: no spam or clickbait, but don't miss a good story either.

Use an overall ranking from 0.00 to 10.00, rounded to the nearest hundredth, where lower scores indicate poor alignment and higher scores indicate good alignment.
Include a brief explanation for your ranking, in no more than 1-2 sentences, max 30 words.
Your response must be a strict JSON dictionary on a single line, with no backticks, code blocks, or other formatting.

# Ranking Criteria
1. **Local Focus**: the story should involve individuals, small communities, or local efforts, especially in small towns or neighborhoods.
2. **Non-Celebrity**: no major celebrities or public figures.
3. **Non-Political**: avoid politics, government policy, or political issues.
4. **Uplifting and Positive**: the story should leave readers with joy, hope, or inspiration.
5. **Acts of Kindness or Community Support**: bonus for selfless acts, community collaboration, or personal achievements.
6. **Uncommon Stories**: prefer unique, heartwarming, or pleasantly surprising stories over generic good news.
7. **Avoid Negative Contexts**: no sadness, tragedy, or negative events, even with a positive outcome.
8. **Visual Potential**: consider whether the story could be effectively conveyed as an illustration.

# Headline Information
%s

# Example Response
{"ranking": 3.45, "explanation": "This headline ..."}

# Your Response`, headline)
}

func buildSummarizePrompt(storyText string) string {
	return fmt.Sprintf(`# Instruction
You are a skilled content summarizer.
Extract and condense the most important elements of this story into a clear, engaging summary of less than 200 words.
Focus on the key narrative points while maintaining the emotional core of the story.
Think about how this story could be visualized, but do not mention any visual style or illustration in the summary itself.
You MUST use double newlines ("\n\n") to separate the summary into small, easily readable paragraphs.

NOTE:
- This summary serves both as a story summary for the reader and as story context for the image generation model.
- Use markdown formatting, including bolding and italicizing, to make the summary more engaging.
- Mirror the tense of the original story so it reads naturally the day it was written.
- Begin the summary with the location of the story, such as "Sault Ste. Marie -- ", as in many news articles.

Your response must be a strict JSON dictionary on a single line, with no backticks, code blocks, or other formatting.

# Example Response
{"summary": "Brief summary of key points..."}

# Webpage Text
%s`, mustJSON(storyText))
}

func buildContentValidationPrompt(text string) string {
	return fmt.Sprintf(`# Instruction
You are reviewing scraped webpage text before it is committed to as a story source.
Decide whether this text is a readable news article suitable for summarization: coherent prose, a discernible story, not a paywall notice, error page, navigation dump, or listing of unrelated headlines.
Your response must be a strict JSON dictionary on a single line, with no backticks, code blocks, or other formatting.

# Example Response
{"suitable": true, "explanation": "Coherent article about ..."}

# Webpage Text
%s`, mustJSON(text))
}

func buildImagePrompt(storyText string, weakAreas []string) string {
	prompt := fmt.Sprintf(`# Instruction
Write an instruction prompt that generates an image in 200 words or less.
Your response must be a strict JSON dictionary on a single line, with no backticks, code blocks, or other formatting.

# Style
Key style elements:
- Any human characters in the image must be diverse in terms of age, gender, and ethnicity
- Be creative with the artistic style - consider approaches like watercolor, digital art, pencil sketches, bold colors, or minimalist designs
- Experiment with different compositions, perspectives, and layouts
- The mood and tone should match the story's emotional content
- Visual elements should support and enhance the narrative
- Maintain clear focus on the key story elements
- Consider symbolic or metaphorical elements that reinforce the story's message
- Do NOT include any text in the image

# Example Response
{"full_prompt": "..."}

# Story
%s`, mustJSON(storyText))

	if len(weakAreas) > 0 {
		directives := make([]string, 0, len(weakAreas))
		for _, area := range weakAreas {
			directives = append(directives, "Improve "+strings.ReplaceAll(area, "_", " "))
		}
		prompt += "\n\n# BEFORE GENERATING IMAGE\n" +
			"- You have already tried to generate this image once. Given these weak areas of the previous attempt, address them even more explicitly in your new prompt:\n\n" +
			mustJSON(map[string][]string{"improvements_needed": directives})
	}

	return prompt
}

func buildImageValidationPrompt(imageGenPrompt string) string {
	return fmt.Sprintf(`# Instruction
You are an expert evaluator of images.
Evaluate how well the image aligns with the following criteria.
For each criterion, provide a score between 0.00 and 10.00, using decimal precision rounded to the nearest hundredth to reflect nuance.

# Grading Criteria
- text_accuracy (0-10): the text caption's accuracy and match with the image generation prompt
- text_legibility (0-10): how readable and clear the text caption is for humans
- text_coherence (0-10): how well the text caption makes sense in the image context
- character_diversity (0-10): diversity of human characters in terms of age, gender, ethnicity, and physical ability
- theme_relevance (0-10): how closely the image matches its intended theme or subject
- emotional_impact (0-10): how well it evokes positive emotions (joy, hope, inspiration, warmth)
- visual_appeal (0-10): quality of composition, colors, and style, without distracting elements
- clarity (0-10): clarity of content without blur, distortion, or artifacts
- cohesiveness (0-10): how harmoniously all elements work together
- creativity (0-10): level of uniqueness and originality, avoiding cliches
- uplifting_suitability (0-10): alignment with light-hearted, joyful narratives

# Prompt Used to Generate Image
%s

Your response must be a strict JSON dictionary on a single line, with no backticks, code blocks, or other formatting.

# Example Response
{"text_accuracy": 8.50, "text_legibility": 7.25, "text_coherence": 9.00, "character_diversity": 6.75, "theme_relevance": 8.50, "emotional_impact": 7.00, "visual_appeal": 8.25, "clarity": 9.50, "cohesiveness": 8.00, "creativity": 7.75, "uplifting_suitability": 8.50}`, mustJSON(imageGenPrompt))
}

// mustJSON marshals v to a JSON string. It panics on error because callers
// only pass values already decoded from JSON or plain strings.
func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("engine: json.Marshal failed on known value: %v", err))
	}
	return string(b)
}
