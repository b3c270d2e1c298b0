package receipt

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage Storage
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		var err error
		storage, err = NewLocalStorage(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Save", func() {
		var (
			filename  string
			data      []byte
			savedPath string
			err       error
		)

		BeforeEach(func() {
			filename = "purchases.csv"
			data = []byte("id,timestamp\n")
		})

		JustBeforeEach(func() {
			savedPath, err = storage.Save(filename, data)
		})

		When("saving succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return the file name", func() {
				Expect(savedPath).To(Equal(filename))
			})

			It("should save the file to disk", func() {
				Expect(filepath.Join(tmpDir, filename)).To(BeAnExistingFile())
			})

			It("should not leave temp files behind", func() {
				entries, readErr := os.ReadDir(tmpDir)
				Expect(readErr).NotTo(HaveOccurred())
				Expect(entries).To(HaveLen(1))
			})
		})

		When("the file already exists", func() {
			BeforeEach(func() {
				Expect(os.WriteFile(filepath.Join(tmpDir, filename), []byte("old,longer,content\n1,2,3\n"), 0644)).To(Succeed())
			})

			It("should replace the contents", func() {
				content, readErr := os.ReadFile(filepath.Join(tmpDir, filename))
				Expect(readErr).NotTo(HaveOccurred())
				Expect(string(content)).To(Equal("id,timestamp\n"))
			})
		})
	})

	Describe("SaveAll", func() {
		var (
			files []File
			err   error
		)

		BeforeEach(func() {
			Expect(os.WriteFile(filepath.Join(tmpDir, "line_items.csv"), []byte("old items\n"), 0644)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(tmpDir, "purchases.csv"), []byte("old purchases\n"), 0644)).To(Succeed())
			files = []File{
				{Name: "line_items.csv", Data: []byte("new items\n")},
				{Name: "purchases.csv", Data: []byte("new purchases\n")},
			}
		})

		JustBeforeEach(func() {
			err = storage.SaveAll(files)
		})

		When("every file is written", func() {
			It("should replace all of them", func() {
				Expect(err).NotTo(HaveOccurred())
				content, readErr := os.ReadFile(filepath.Join(tmpDir, "line_items.csv"))
				Expect(readErr).NotTo(HaveOccurred())
				Expect(string(content)).To(Equal("new items\n"))
				content, readErr = os.ReadFile(filepath.Join(tmpDir, "purchases.csv"))
				Expect(readErr).NotTo(HaveOccurred())
				Expect(string(content)).To(Equal("new purchases\n"))
			})
		})

		When("a later file cannot be written", func() {
			BeforeEach(func() {
				// a path separator makes the temp file pattern invalid
				files[1].Name = "nested/purchases.csv"
			})

			It("returns the error", func() {
				Expect(err).To(MatchError(ContainSubstring("saving nested/purchases.csv")))
			})

			It("should leave the earlier file untouched", func() {
				content, readErr := os.ReadFile(filepath.Join(tmpDir, "line_items.csv"))
				Expect(readErr).NotTo(HaveOccurred())
				Expect(string(content)).To(Equal("old items\n"))
			})

			It("should not leave temp files behind", func() {
				entries, readErr := os.ReadDir(tmpDir)
				Expect(readErr).NotTo(HaveOccurred())
				Expect(entries).To(HaveLen(2))
			})
		})
	})

	Describe("Get", func() {
		var (
			filename string
			data     []byte
			err      error
		)

		JustBeforeEach(func() {
			data, err = storage.Get(filename)
		})

		When("file exists", func() {
			BeforeEach(func() {
				filename = "line_items.csv"
				_, saveErr := storage.Save(filename, []byte("article_name\n"))
				Expect(saveErr).NotTo(HaveOccurred())
			})

			It("should return the file data", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(string(data)).To(Equal("article_name\n"))
			})
		})

		When("file does not exist", func() {
			BeforeEach(func() {
				filename = "nonexistent.csv"
			})

			It("returns the error", func() {
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("reading file"))
			})
		})
	})

	Describe("NewLocalStorage", func() {
		var (
			storagePath string
			err         error
		)

		JustBeforeEach(func() {
			_, err = NewLocalStorage(storagePath)
		})

		When("directory does not exist", func() {
			BeforeEach(func() {
				storagePath = filepath.Join(GinkgoT().TempDir(), "output", "nested")
			})

			It("should create the directory", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(storagePath).To(BeADirectory())
			})
		})

		When("the path is a file", func() {
			BeforeEach(func() {
				storagePath = filepath.Join(tmpDir, "file")
				Expect(os.WriteFile(storagePath, nil, 0644)).To(Succeed())
			})

			It("returns the error", func() {
				Expect(err).To(MatchError(ContainSubstring("creating output directory")))
			})
		})
	})
})
