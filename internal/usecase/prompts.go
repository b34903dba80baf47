package usecase

import (
	"fmt"
	"strings"

	"blogforge/internal/domain/model"
)

// promptVars carries the fixed context every prompt shares.
type promptVars struct {
	Industry string
	Company  string
	Phone    string
	Website  string
}

func joinSnippets(snips []model.ResearchSnippet, maxEach, maxTotal int) string {
	var parts []string
	for _, s := range snips {
		t := s.Snippet
		if len(t) > maxEach {
			t = t[:maxEach]
		}
		parts = append(parts, t)
	}
	joined := strings.Join(parts, " ")
	if len(joined) > maxTotal {
		joined = joined[:maxTotal]
	}
	if joined == "" {
		return "general industry knowledge"
	}
	return joined
}

func titlePrompt(main string, subs []string, v promptVars) string {
	alsoInclude := ""
	tryInclude := ""
	if len(subs) > 0 {
		alsoInclude = subs[0]
		tryInclude = strings.Join(firstN(subs[1:], 2), ", ")
	}
	return fmt.Sprintf(`You are an expert SEO content writer for the %s industry.

Generate an SEO-optimized blog title that includes these keywords naturally:
- Main keyword: %s
- Must also include: %s
- Try to include: %s

Requirements:
1. 50-60 characters long
2. Include main keyword and at least one additional keyword
3. Compelling and professional
4. Natural flow, do not force keywords

Generate ONLY the title, nothing else.`, v.Industry, main, alsoInclude, tryInclude)
}

func h1Prompt(title, main string, v promptVars) string {
	return fmt.Sprintf(`Create an H1 heading for a %s industry blog.

Blog title: %s
Main keyword: %s

Make it similar to the title but it can be slightly different. Include the main keyword naturally.
Generate ONLY the H1 heading.`, v.Industry, title, main)
}

func openingPrompt(title, main, context string, v promptVars) string {
	return fmt.Sprintf(`Write a compelling opening paragraph for a %s industry blog.

Title: %s
Topic: %s
Context: %s

Requirements:
1. Start with a thought-provoking question or surprising statistic
2. Include the main keyword "%s" naturally
3. Write 150-200 words
4. Use an engaging, conversational tone
5. Set up what the article will cover

Generate ONLY the opening paragraph with proper formatting.`, v.Industry, title, main, context, main)
}

func subheadingsPrompt(title, main string, subs []string, n int, v promptVars) string {
	return fmt.Sprintf(`Create %d engaging H2 subheadings for a %s industry blog.

Title: %s
Main keyword: %s
Additional keywords to incorporate: %s

Requirements:
1. Each subheading should include at least one keyword naturally
2. Make them compelling and benefit-focused
3. Use different formats (questions, how-to, benefits)
4. 5-10 words each
5. Cover different aspects of the topic

Format: list each subheading on a new line, no numbers.`, n, v.Industry, title, main, strings.Join(subs, ", "))
}

func sectionPrompt(subheading, context, main string, sectionKWs []string, wordTarget int, v promptVars) string {
	return fmt.Sprintf(`Write engaging content for a %s industry blog section.

Section heading (DO NOT INCLUDE IN OUTPUT): %s
Main topic: %s
Keywords to include naturally: %s
Context: %s

Requirements:
1. Write %d words
2. Do NOT include the section heading in your response
3. Start with a strong statement, include 3-4 key points as a bulleted list, expand with examples, and add one practical tip
4. Short paragraphs of 2-3 sentences
5. Include one rhetorical question
6. Briefly mention %s solutions

Format with HTML tags: <p> for paragraphs, <ul>/<li> for bullets, <strong> for emphasis. Do NOT include any headings.

Generate ONLY the section content.`, v.Industry, subheading, main, strings.Join(sectionKWs, ", "), context, wordTarget, v.Company)
}

func ctaPrompt(main string, v promptVars) string {
	return fmt.Sprintf(`Write a compelling call-to-action for a %s blog about %s.

Requirements:
1. Start with "Ready to transform your %s operations?"
2. Include 3 key benefits as bullet points
3. Add contact information
4. Professional but persuasive tone
5. 150-200 words total

Include these details:
- Phone: %s
- Website: %s

Format with HTML tags.`, v.Industry, main, main, v.Phone, v.Website)
}

func conclusionPrompt(title, main string, keyPoints []string, v promptVars) string {
	return fmt.Sprintf(`Write a strong conclusion for a %s industry blog.

Title: %s
Topic: %s
Key points covered: %s

Requirements:
1. Summarize 3 main takeaways as a numbered list
2. Include a forward-looking statement about the industry
3. End with a thought-provoking question
4. Write 150-200 words total
5. Reference how %s is shaping the future

Format with proper HTML tags.`, v.Industry, title, main, strings.Join(firstN(keyPoints, 3), ", "), v.Company)
}

func faqPrompt(main string, kws []string, v promptVars) string {
	return fmt.Sprintf(`Generate a FAQ section for a %s blog about %s.

Create 3-4 relevant questions and detailed answers.
Include these keywords naturally: %s

Format:
<h3>Frequently Asked Questions</h3>
<div class="faq-item">
  <h4>Question here?</h4>
  <p>Detailed answer here...</p>
</div>

Make each answer 50-75 words. Focus on practical value.`, v.Industry, main, strings.Join(firstN(kws, 3), ", "))
}

func titleFallbackPrompt(main string, kws []string, summary string, v promptVars) string {
	return fmt.Sprintf(`Generate an SEO-optimized blog post title.

Topic: %s
Keywords: %s
Content summary: %s

Requirements:
1. 50-70 characters
2. Include main keyword naturally
3. Compelling and clickable
4. Professional tone

Generate ONLY the title.`, main, strings.Join(firstN(kws, 3), ", "), summary)
}

func firstN(ss []string, n int) []string {
	if len(ss) <= n {
		return ss
	}
	return ss[:n]
}
