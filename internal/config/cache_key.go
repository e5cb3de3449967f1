package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// LearnerSessionKey returns the cache key for a learner's login session
func (r *CacheKeyStruct) LearnerSessionKey(learnerID int) string {
	return fmt.Sprintf("login:%d", learnerID)
}

// CourseLessonsKey returns the cache key for a course's ordered lesson list
func (r *CacheKeyStruct) CourseLessonsKey(courseID string) string {
	return fmt.Sprintf("course:%s:lessons", courseID)
}

// GradingFeedChannel returns the Redis PubSub channel for grading feed events
func (r *CacheKeyStruct) GradingFeedChannel() string {
	return "grading:feed"
}

var CacheKey = NewCacheKeyStruct()
