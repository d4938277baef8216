package app

import "mathsense-service/internal/domain"

// FallbackQuestions is the compiled-in sample set used when neither the
// generator nor the question store yields anything.
func FallbackQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:            "1",
			Category:      "Mental Math",
			Difficulty:    domain.DifficultyEasy,
			Prompt:        "What is 15 × 12?",
			CorrectAnswer: "180",
			Explanation:   "Break it down: (15 × 10) + (15 × 2) = 150 + 30 = 180",
			Course:        "Algebra 1",
		},
		{
			ID:            "2",
			Category:      "Number Properties",
			Difficulty:    domain.DifficultyEasy,
			Prompt:        "What is the sum of the first 10 positive integers?",
			CorrectAnswer: "55",
			Explanation:   "Use the formula n(n+1)/2 where n=10: 10(11)/2 = 55",
			Course:        "Statistics",
		},
		{
			ID:            "3",
			Category:      "Algebra",
			Difficulty:    domain.DifficultyEasy,
			Prompt:        "Solve for x: 3x + 5 = 20",
			CorrectAnswer: "5",
			Explanation:   "Subtract 5 from both sides: 3x = 15, then divide by 3: x = 5",
			Course:        "Algebra 2",
		},
		{
			ID:            "4",
			Category:      "Geometry",
			Difficulty:    domain.DifficultyEasy,
			Prompt:        "What is the area of a rectangle with length 8 and width 6?",
			CorrectAnswer: "48",
			Explanation:   "Area = length × width = 8 × 6 = 48",
			Course:        "Geometry",
		},
		{
			ID:            "5",
			Category:      "Mental Math",
			Difficulty:    domain.DifficultyMedium,
			Prompt:        "What is 25% of 160?",
			CorrectAnswer: "40",
			Explanation:   "To find 25%, divide by 4: 160 ÷ 4 = 40",
			Course:        "Algebra 1",
		},
		{
			ID:            "6",
			Category:      "Number Properties",
			Difficulty:    domain.DifficultyMedium,
			Prompt:        "How many factors does 72 have?",
			CorrectAnswer: "12",
			Explanation:   "Prime factorization: 72 = 2³ × 3². Number of factors = (3+1)(2+1) = 4 × 3 = 12",
			Course:        "Statistics",
		},
		{
			ID:            "7",
			Category:      "Algebra",
			Difficulty:    domain.DifficultyMedium,
			Prompt:        "If x² + y² = 25 and xy = 12, what is x + y?",
			CorrectAnswer: "7",
			Explanation:   "Use (x+y)² = x² + 2xy + y² = 25 + 24 = 49, so x + y = 7",
			Course:        "Algebra 2",
		},
		{
			ID:            "8",
			Category:      "Geometry",
			Difficulty:    domain.DifficultyMedium,
			Prompt:        "In a right triangle, if one leg is 5 and the hypotenuse is 13, what is the other leg?",
			CorrectAnswer: "12",
			Explanation:   "Use Pythagorean theorem: 5² + x² = 13², so x = 12",
			Course:        "Geometry",
		},
		{
			ID:            "9",
			Category:      "Mental Math",
			Difficulty:    domain.DifficultyHard,
			Prompt:        "What is 68 × 67?",
			CorrectAnswer: "4556",
			Explanation:   "Use (a+1)(a-1) pattern: 68 × 67 = (67+1)(67) = 67² + 67 = 4489 + 67 = 4556",
			Course:        "Pre-Calculus",
		},
		{
			ID:            "10",
			Category:      "Number Properties",
			Difficulty:    domain.DifficultyHard,
			Prompt:        "What is the remainder when 2⁵⁰ is divided by 7?",
			CorrectAnswer: "4",
			Explanation:   "Use cyclicity: 2¹ ≡ 2, 2² ≡ 4, 2³ ≡ 1 (mod 7). Since 50 ≡ 2 (mod 3), 2⁵⁰ ≡ 4 (mod 7)",
			Course:        "Calculus",
		},
	}
}
