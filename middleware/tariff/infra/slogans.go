package infra

import "math/rand/v2"

var slogans = []string{
	"American packages are WINNING AGAIN!",
	"We're bringing back JOBS to our codebase!",
	"This is how we get FAIR TRADE in Node.js!",
	"Big win for AMERICAN programmers!",
	"No more BAD DEALS with foreign packages!",
	"Making Programming Great Again!",
	"Believe me, this is the BEST tariff!",
	"We're going to win SO MUCH, you'll get tired of winning!",
	"This is how we Keep America Coding Again!",
	"HUGE success!",
}

// RandomSlogan escolhe um slogan de forma uniforme, sem memória das escolhas anteriores.
func RandomSlogan() string {
	return slogans[rand.IntN(len(slogans))]
}
