// Package langs is the registry of editor languages: starter code, the
// remote runtime used to execute them and the file extension they map to.
package langs

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Default is the language used before any preference is stored.
const Default = "javascript"

// ErrUnknownLanguage is returned for ids missing from the registry.
var ErrUnknownLanguage = errors.New("unknown language")

// Runtime identifies a remote execution environment.
type Runtime struct {
	Language string
	Version  string
}

// Language describes one supported language.
type Language struct {
	ID          string
	Label       string
	Extension   string
	Lexer       string // chroma lexer name
	Runtime     Runtime
	DefaultCode string
}

var registry = []Language{
	{
		ID:        "javascript",
		Label:     "JavaScript",
		Extension: "js",
		Lexer:     "javascript",
		Runtime:   Runtime{Language: "javascript", Version: "18.15.0"},
		DefaultCode: `// JavaScript Playground
const numbers = [1, 2, 3, 4, 5];

// Map numbers to their squares
const squares = numbers.map(n => n * n);
console.log('Original numbers:', numbers);
console.log('Squared numbers:', squares);

// Filter for even numbers
const evenNumbers = numbers.filter(n => n % 2 === 0);
console.log('Even numbers:', evenNumbers);

// Calculate sum using reduce
const sum = numbers.reduce((acc, curr) => acc + curr, 0);
console.log('Sum of numbers:', sum);`,
	},
	{
		ID:        "typescript",
		Label:     "TypeScript",
		Extension: "ts",
		Lexer:     "typescript",
		Runtime:   Runtime{Language: "typescript", Version: "5.0.3"},
		DefaultCode: `// TypeScript Playground
interface NumberArray {
  numbers: number[];
  sum(): number;
}

const data: NumberArray = {
  numbers: [1, 2, 3, 4, 5],
  sum() {
    return this.numbers.reduce((acc, curr) => acc + curr, 0);
  },
};

console.log('Numbers:', data.numbers);
console.log('Sum:', data.sum());`,
	},
	{
		ID:        "python",
		Extension: "py",
		Lexer:     "python",
		Runtime:   Runtime{Language: "python", Version: "3.10.0"},
		DefaultCode: `# Python Playground
numbers = [1, 2, 3, 4, 5]

squares = [n ** 2 for n in numbers]
print(f"Original numbers: {numbers}")
print(f"Squared numbers: {squares}")

even_numbers = [n for n in numbers if n % 2 == 0]
print(f"Even numbers: {even_numbers}")

print(f"Sum of numbers: {sum(numbers)}")`,
	},
	{
		ID:        "java",
		Extension: "java",
		Lexer:     "java",
		Runtime:   Runtime{Language: "java", Version: "15.0.2"},
		DefaultCode: `public class Main {
    public static void main(String[] args) {
        int[] numbers = {1, 2, 3, 4, 5};
        int sum = 0;
        for (int n : numbers) {
            System.out.println(n + " squared is " + (n * n));
            sum += n;
        }
        System.out.println("Sum of numbers: " + sum);
    }
}`,
	},
	{
		ID:        "go",
		Extension: "go",
		Lexer:     "go",
		Runtime:   Runtime{Language: "go", Version: "1.16.2"},
		DefaultCode: `package main

import "fmt"

func main() {
	numbers := []int{1, 2, 3, 4, 5}
	sum := 0
	for _, n := range numbers {
		fmt.Printf("%d squared is %d\n", n, n*n)
		sum += n
	}
	fmt.Println("Sum of numbers:", sum)
}`,
	},
	{
		ID:        "rust",
		Extension: "rs",
		Lexer:     "rust",
		Runtime:   Runtime{Language: "rust", Version: "1.68.2"},
		DefaultCode: `fn main() {
    let numbers = vec![1, 2, 3, 4, 5];
    let squares: Vec<i32> = numbers.iter().map(|n| n * n).collect();
    println!("Original numbers: {:?}", numbers);
    println!("Squared numbers: {:?}", squares);
    let sum: i32 = numbers.iter().sum();
    println!("Sum of numbers: {}", sum);
}`,
	},
	{
		ID:        "cpp",
		Label:     "C++",
		Extension: "cpp",
		Lexer:     "cpp",
		Runtime:   Runtime{Language: "cpp", Version: "10.2.0"},
		DefaultCode: `#include <iostream>
#include <vector>

int main() {
    std::vector<int> numbers = {1, 2, 3, 4, 5};
    int sum = 0;
    for (int n : numbers) {
        std::cout << n << " squared is " << n * n << std::endl;
        sum += n;
    }
    std::cout << "Sum of numbers: " << sum << std::endl;
    return 0;
}`,
	},
	{
		ID:        "csharp",
		Label:     "C#",
		Extension: "cs",
		Lexer:     "csharp",
		Runtime:   Runtime{Language: "csharp", Version: "6.12.0"},
		DefaultCode: `using System;
using System.Linq;

class Program {
    static void Main() {
        var numbers = new[] { 1, 2, 3, 4, 5 };
        var squares = numbers.Select(n => n * n);
        Console.WriteLine($"Original numbers: {string.Join(", ", numbers)}");
        Console.WriteLine($"Squared numbers: {string.Join(", ", squares)}");
        Console.WriteLine($"Sum of numbers: {numbers.Sum()}");
    }
}`,
	},
	{
		ID:        "ruby",
		Extension: "rb",
		Lexer:     "ruby",
		Runtime:   Runtime{Language: "ruby", Version: "3.0.1"},
		DefaultCode: `# Ruby Playground
numbers = [1, 2, 3, 4, 5]

squares = numbers.map { |n| n ** 2 }
puts "Original numbers: #{numbers.inspect}"
puts "Squared numbers: #{squares.inspect}"
puts "Sum of numbers: #{numbers.sum}"`,
	},
	{
		ID:        "swift",
		Extension: "swift",
		Lexer:     "swift",
		Runtime:   Runtime{Language: "swift", Version: "5.3.3"},
		DefaultCode: `// Swift Playground
let numbers = [1, 2, 3, 4, 5]

let squares = numbers.map { $0 * $0 }
print("Original numbers: \(numbers)")
print("Squared numbers: \(squares)")
print("Sum of numbers: \(numbers.reduce(0, +))")`,
	},
}

var byID = func() map[string]Language {
	title := cases.Title(language.English)
	m := make(map[string]Language, len(registry))
	for i := range registry {
		if registry[i].Label == "" {
			registry[i].Label = title.String(registry[i].ID)
		}
		m[registry[i].ID] = registry[i]
	}
	return m
}()

// Lookup returns the language registered under id.
func Lookup(id string) (Language, error) {
	l, ok := byID[id]
	if !ok {
		return Language{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, id)
	}
	return l, nil
}

// Known reports whether id is a registered language.
func Known(id string) bool {
	_, ok := byID[id]
	return ok
}

// All returns the registered languages in menu order.
func All() []Language {
	out := make([]Language, len(registry))
	copy(out, registry)
	return out
}

// IDs returns the registered language ids in menu order.
func IDs() []string {
	out := make([]string, 0, len(registry))
	for _, l := range registry {
		out = append(out, l.ID)
	}
	return out
}

// ByExtension finds the language whose extension matches the file name or
// bare extension given.
func ByExtension(name string) (Language, bool) {
	ext := name
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		ext = name[i+1:]
	}
	ext = strings.ToLower(ext)
	for _, l := range registry {
		if l.Extension == ext {
			return l, true
		}
	}
	return Language{}, false
}

// FileName builds "<base>.<ext>" for the language, falling back to the
// language id as extension for unregistered languages.
func FileName(base, id string) string {
	if l, ok := byID[id]; ok {
		return base + "." + l.Extension
	}
	return base + "." + id
}

// DefaultCode returns the starter program for id, or "" when unknown.
func DefaultCode(id string) string {
	return byID[id].DefaultCode
}
