package pkg

import "golang.org/x/crypto/bcrypt"

const defaultHashCost = 14

func HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, defaultHashCost)
}

func HashPasswordWithCost(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return BytesToString(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
