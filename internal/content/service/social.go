package service

import (
	"strings"
	"time"

	"github.com/pulseboard/pulseboard/backend/go-services/internal/content"
	"github.com/samber/lo"
)

type seedPost struct {
	id       string
	content  string
	author   string
	avatar   string
	age      time.Duration
	likes    int
	hashtags []string
}

// There is no social provider; the feed is a fixed set of posts whose
// timestamps are relative to the time of the request.
var socialFeed = []seedPost{
	{
		id:       "1",
		content:  "Just discovered an amazing new AI tool that completely changed my workflow! The future is here 🚀 #AI #productivity #tech",
		author:   "TechEnthusiast",
		avatar:   "https://images.pexels.com/photos/1222271/pexels-photo-1222271.jpeg?auto=compress&cs=tinysrgb&w=150&h=150&fit=crop",
		age:      1 * time.Hour,
		likes:    342,
		hashtags: []string{"AI", "productivity", "tech"},
	},
	{
		id:       "2",
		content:  "Working on a new React project and loving the new hooks patterns. The developer experience keeps getting better! 💻",
		author:   "CodeMaster",
		avatar:   "https://images.pexels.com/photos/733872/pexels-photo-733872.jpeg?auto=compress&cs=tinysrgb&w=150&h=150&fit=crop",
		age:      3 * time.Hour,
		likes:    156,
		hashtags: []string{"React", "coding", "webdev"},
	},
	{
		id:       "3",
		content:  "The latest movie releases are incredible! Just watched an amazing sci-fi thriller that blew my mind 🎬 #movies #cinema",
		author:   "MovieBuff",
		avatar:   "https://images.pexels.com/photos/1181686/pexels-photo-1181686.jpeg?auto=compress&cs=tinysrgb&w=150&h=150&fit=crop",
		age:      5 * time.Hour,
		likes:    89,
		hashtags: []string{"movies", "cinema", "scifi"},
	},
	{
		id:       "4",
		content:  "Climate action is more important than ever. Every small step counts towards a sustainable future 🌍 #climate #sustainability",
		author:   "EcoWarrior",
		avatar:   "https://images.pexels.com/photos/1310522/pexels-photo-1310522.jpeg?auto=compress&cs=tinysrgb&w=150&h=150&fit=crop",
		age:      7 * time.Hour,
		likes:    234,
		hashtags: []string{"climate", "sustainability", "environment"},
	},
}

// Social returns the feed, keeping posts with a hashtag containing q.Hashtag
// (case-insensitive) when one is given.
func (s *Service) Social(q content.SocialQuery) []content.SocialPost {
	now := s.now()
	posts := lo.Map(socialFeed, func(p seedPost, _ int) content.SocialPost {
		return content.SocialPost{
			ID:        p.id,
			Content:   p.content,
			Author:    p.author,
			Avatar:    p.avatar,
			Timestamp: s.timestamp(now.Add(-p.age)),
			Likes:     p.likes,
			Hashtags:  append([]string(nil), p.hashtags...),
		}
	})
	if q.Hashtag == "" {
		return posts
	}
	needle := strings.ToLower(q.Hashtag)
	return lo.Filter(posts, func(p content.SocialPost, _ int) bool {
		return lo.SomeBy(p.Hashtags, func(tag string) bool {
			return strings.Contains(strings.ToLower(tag), needle)
		})
	})
}
